package face

import (
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/sweeney/blink-logger/internal/logic"
)

// ServiceName is the fully qualified gRPC service exposed by the landmark
// sidecar (see api/landmarks.proto).
const ServiceName = "blinklogger.landmarks.v1.LandmarkService"

const (
	methodDetect  = "/" + ServiceName + "/DetectFaces"
	methodPredict = "/" + ServiceName + "/PredictLandmarks"

	maxMessageSize = 16 * 1024 * 1024
)

// GRPCClient implements Analyzer against a remote landmark service.
type GRPCClient struct {
	conn    *grpc.ClientConn
	addr    string
	timeout time.Duration
}

// NewGRPCClient creates a client for the landmark service at addr. Each call
// is bounded by timeout. Extra dial options are appended to the defaults.
func NewGRPCClient(addr string, timeout time.Duration, extra ...grpc.DialOption) (*GRPCClient, error) {
	opts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(
			grpc.MaxCallRecvMsgSize(maxMessageSize),
			grpc.MaxCallSendMsgSize(maxMessageSize),
		),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                10 * time.Second,
			Timeout:             3 * time.Second,
			PermitWithoutStream: true,
		}),
	}
	opts = append(opts, extra...)

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to landmark service at %s: %w", addr, err)
	}

	return &GRPCClient{
		conn:    conn,
		addr:    addr,
		timeout: timeout,
	}, nil
}

// Detect sends the frame as PGM and returns the face rectangles.
func (c *GRPCClient) Detect(ctx context.Context, img *image.Gray) ([]image.Rectangle, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp := &structpb.Struct{}
	if err := c.conn.Invoke(ctx, methodDetect, wrapperspb.Bytes(EncodePGM(img)), resp); err != nil {
		return nil, fmt.Errorf("detect faces: %w", err)
	}
	return decodeFaces(resp)
}

// Predict returns the landmark points for one face.
func (c *GRPCClient) Predict(ctx context.Context, img *image.Gray, face image.Rectangle) (Landmarks, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := encodePredictRequest(img, face)
	if err != nil {
		return nil, err
	}
	resp := &structpb.Struct{}
	if err := c.conn.Invoke(ctx, methodPredict, req, resp); err != nil {
		return nil, fmt.Errorf("predict landmarks: %w", err)
	}
	return decodePoints(resp)
}

// Close tears down the connection.
func (c *GRPCClient) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func (c *GRPCClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// LandmarkServer is the server side of the landmark service.
type LandmarkServer interface {
	DetectFaces(context.Context, *wrapperspb.BytesValue) (*structpb.Struct, error)
	PredictLandmarks(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterLandmarkServer registers srv on s.
func RegisterLandmarkServer(s *grpc.Server, srv LandmarkServer) {
	s.RegisterService(&landmarkServiceDesc, srv)
}

var landmarkServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LandmarkServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "DetectFaces", Handler: detectFacesHandler},
		{MethodName: "PredictLandmarks", Handler: predictLandmarksHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "api/landmarks.proto",
}

func detectFacesHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LandmarkServer).DetectFaces(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodDetect}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(LandmarkServer).DetectFaces(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

func predictLandmarksHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LandmarkServer).PredictLandmarks(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodPredict}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(LandmarkServer).PredictLandmarks(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// AnalyzerServer exposes a local Detector/Predictor pair as a LandmarkServer.
type AnalyzerServer struct {
	Detector  Detector
	Predictor Predictor
}

// DetectFaces decodes the PGM frame and runs the wrapped detector.
func (s *AnalyzerServer) DetectFaces(ctx context.Context, in *wrapperspb.BytesValue) (*structpb.Struct, error) {
	img, err := DecodePGM(in.GetValue())
	if err != nil {
		return nil, err
	}
	faces, err := s.Detector.Detect(ctx, img)
	if err != nil {
		return nil, err
	}
	return encodeFaces(faces)
}

// PredictLandmarks decodes the request and runs the wrapped predictor.
func (s *AnalyzerServer) PredictLandmarks(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	img, face, err := decodePredictRequest(in)
	if err != nil {
		return nil, err
	}
	lm, err := s.Predictor.Predict(ctx, img, face)
	if err != nil {
		return nil, err
	}
	return encodePoints(lm)
}

func rectFields(r image.Rectangle) map[string]interface{} {
	return map[string]interface{}{
		"left":   r.Min.X,
		"top":    r.Min.Y,
		"right":  r.Max.X,
		"bottom": r.Max.Y,
	}
}

func rectFromStruct(s *structpb.Struct) image.Rectangle {
	f := s.GetFields()
	return image.Rect(
		int(f["left"].GetNumberValue()),
		int(f["top"].GetNumberValue()),
		int(f["right"].GetNumberValue()),
		int(f["bottom"].GetNumberValue()),
	)
}

func encodeFaces(faces []image.Rectangle) (*structpb.Struct, error) {
	list := make([]interface{}, 0, len(faces))
	for _, r := range faces {
		list = append(list, rectFields(r))
	}
	return structpb.NewStruct(map[string]interface{}{"faces": list})
}

func decodeFaces(s *structpb.Struct) ([]image.Rectangle, error) {
	values := s.GetFields()["faces"].GetListValue().GetValues()
	faces := make([]image.Rectangle, 0, len(values))
	for i, v := range values {
		fs := v.GetStructValue()
		if fs == nil {
			return nil, fmt.Errorf("face %d: not an object", i)
		}
		faces = append(faces, rectFromStruct(fs))
	}
	return faces, nil
}

func encodePredictRequest(img *image.Gray, face image.Rectangle) (*structpb.Struct, error) {
	fields := rectFields(face)
	fields["image"] = base64.StdEncoding.EncodeToString(EncodePGM(img))
	req, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("encode predict request: %w", err)
	}
	return req, nil
}

func decodePredictRequest(s *structpb.Struct) (*image.Gray, image.Rectangle, error) {
	raw, err := base64.StdEncoding.DecodeString(s.GetFields()["image"].GetStringValue())
	if err != nil {
		return nil, image.Rectangle{}, fmt.Errorf("decode image: %w", err)
	}
	img, err := DecodePGM(raw)
	if err != nil {
		return nil, image.Rectangle{}, err
	}
	return img, rectFromStruct(s), nil
}

func encodePoints(lm Landmarks) (*structpb.Struct, error) {
	list := make([]interface{}, 0, len(lm))
	for _, p := range lm {
		list = append(list, []interface{}{p.X, p.Y})
	}
	return structpb.NewStruct(map[string]interface{}{"points": list})
}

func decodePoints(s *structpb.Struct) (Landmarks, error) {
	values := s.GetFields()["points"].GetListValue().GetValues()
	lm := make(Landmarks, 0, len(values))
	for i, v := range values {
		xy := v.GetListValue().GetValues()
		if len(xy) != 2 {
			return nil, fmt.Errorf("point %d: expected [x, y], got %d values", i, len(xy))
		}
		lm = append(lm, logic.Point{X: xy[0].GetNumberValue(), Y: xy[1].GetNumberValue()})
	}
	return lm, nil
}
