package denoiser

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/satlink/go-controller/internal/bitbuf"
)

// #region mock

type mockDenoiserService struct {
	DenoiserServiceClient

	resp    *structpb.Struct
	err     error
	lastReq *structpb.Struct
}

func (m *mockDenoiserService) Correct(_ context.Context, in *structpb.Struct, _ ...grpc.CallOption) (*structpb.Struct, error) {
	m.lastReq = in
	return m.resp, m.err
}

func probabilities(n int, p float64) *structpb.Struct {
	values := make([]*structpb.Value, n)
	for i := range values {
		values[i] = structpb.NewNumberValue(p)
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"probabilities": structpb.NewListValue(&structpb.ListValue{Values: values}),
	}}
}

func alternating(n int) bitbuf.Bits {
	b := make(bitbuf.Bits, n)
	for i := range b {
		b[i] = uint8(i % 2)
	}
	return b
}

// #endregion mock

// #region constructor-tests

func TestNewClientLazyConnect(t *testing.T) {
	c, err := NewClient("localhost:0", time.Second)
	if err != nil {
		t.Fatalf("unexpected error creating client: %v", err)
	}
	defer c.Close()
}

func TestNewClientWithServiceDefaultsTimeout(t *testing.T) {
	c := NewClientWithService(&mockDenoiserService{}, 0)
	if c.timeout != DefaultTimeout {
		t.Fatalf("expected default timeout, got %v", c.timeout)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close without conn: %v", err)
	}
}

// #endregion constructor-tests

// #region correct-tests

func TestCorrectSuccess(t *testing.T) {
	mock := &mockDenoiserService{resp: probabilities(OutputBits, 0.9)}
	c := NewClientWithService(mock, time.Second)

	got := c.Correct(context.Background(), alternating(300), 7.5)
	if !got.Corrected {
		t.Fatalf("expected corrected, reason: %s", got.Reason)
	}
	if len(got.Bits) != OutputBits {
		t.Fatalf("expected %d bits, got %d", OutputBits, len(got.Bits))
	}
	for i, b := range got.Bits {
		if b != 1 {
			t.Fatalf("bit %d: expected 1, got %d", i, b)
		}
	}

	features := mock.lastReq.GetFields()["features"].GetListValue().GetValues()
	if len(features) != InputBits+1 {
		t.Fatalf("expected %d features, got %d", InputBits+1, len(features))
	}
	if features[1].GetNumberValue() != 1 || features[2].GetNumberValue() != 0 {
		t.Errorf("features do not carry the noisy bits")
	}
	if features[InputBits].GetNumberValue() != 7.5 {
		t.Errorf("expected snr as last feature, got %v", features[InputBits].GetNumberValue())
	}
	if mock.lastReq.GetFields()["snr_db"].GetNumberValue() != 7.5 {
		t.Errorf("expected snr_db field 7.5")
	}
}

func TestCorrectPadsShortInput(t *testing.T) {
	mock := &mockDenoiserService{resp: probabilities(OutputBits, 0.1)}
	c := NewClientWithService(mock, time.Second)

	got := c.Correct(context.Background(), bitbuf.Bits{1, 1}, 3)
	if !got.Corrected {
		t.Fatalf("expected corrected, reason: %s", got.Reason)
	}
	features := mock.lastReq.GetFields()["features"].GetListValue().GetValues()
	if len(features) != InputBits+1 {
		t.Fatalf("expected %d features, got %d", InputBits+1, len(features))
	}
	if features[2].GetNumberValue() != 0 {
		t.Errorf("expected zero padding after input bits")
	}
}

func TestCorrectRPCErrorNotCorrected(t *testing.T) {
	mock := &mockDenoiserService{err: errors.New("model offline")}
	c := NewClientWithService(mock, time.Second)

	got := c.Correct(context.Background(), alternating(255), 5)
	if got.Corrected {
		t.Fatal("expected not corrected")
	}
	if got.Bits != nil {
		t.Errorf("expected no bits, got %d", len(got.Bits))
	}
	if !strings.Contains(got.Reason, "model offline") {
		t.Errorf("expected reason to carry rpc error, got %q", got.Reason)
	}
}

func TestInferWrapsRPCError(t *testing.T) {
	mock := &mockDenoiserService{err: errors.New("rpc failed")}
	c := NewClientWithService(mock, time.Second)

	_, err := c.Infer(context.Background(), make([]float64, InputBits), 1)
	if !errors.Is(err, mock.err) {
		t.Fatalf("expected wrapped rpc error, got: %v", err)
	}
}

func TestInferRejectsMalformedResponses(t *testing.T) {
	wrongType := probabilities(OutputBits, 0.5)
	wrongType.Fields["probabilities"].GetListValue().Values[10] = structpb.NewStringValue("x")

	cases := map[string]*structpb.Struct{
		"missing":    {Fields: map[string]*structpb.Value{}},
		"short":      probabilities(OutputBits-1, 0.5),
		"long":       probabilities(OutputBits+1, 0.5),
		"not-number": wrongType,
	}
	for name, resp := range cases {
		c := NewClientWithService(&mockDenoiserService{resp: resp}, time.Second)
		_, err := c.Infer(context.Background(), make([]float64, InputBits), 1)
		if !errors.Is(err, ErrBadResponse) {
			t.Errorf("%s: expected ErrBadResponse, got %v", name, err)
		}
	}
}

// #endregion correct-tests

// #region bufconn-tests

func dialBufconn(t *testing.T, srv DenoiserServiceServer) *Client {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer()
	RegisterDenoiserServiceServer(s, srv)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial bufconn: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return NewClientWithService(NewDenoiserServiceClient(conn), 2*time.Second)
}

func TestReferenceServerRoundTrip(t *testing.T) {
	c := dialBufconn(t, NewServer(nil))

	noisy := alternating(InputBits)
	got := c.Correct(context.Background(), noisy, 10)
	if !got.Corrected {
		t.Fatalf("expected corrected, reason: %s", got.Reason)
	}
	for i := 0; i < OutputBits; i++ {
		if got.Bits[i] != noisy[i] {
			t.Fatalf("bit %d: expected %d, got %d", i, noisy[i], got.Bits[i])
		}
	}
}

func TestServerModelShapeError(t *testing.T) {
	broken := func([]float64, float64) []float64 { return []float64{0.5} }
	c := dialBufconn(t, NewServer(broken))

	_, err := c.Infer(context.Background(), make([]float64, InputBits), 1)
	if status.Code(errors.Unwrap(err)) != codes.Internal {
		t.Fatalf("expected Internal, got %v", err)
	}
}

func TestServerRejectsWrongFeatureCount(t *testing.T) {
	srv := NewServer(nil)
	_, err := srv.Correct(context.Background(), newRequest(make([]float64, 10), 1))
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}

func TestCorrectTimesOut(t *testing.T) {
	slow := func(f []float64, snr float64) []float64 {
		time.Sleep(200 * time.Millisecond)
		return SystematicModel(f, snr)
	}
	c := dialBufconn(t, NewServer(slow))
	c.timeout = 20 * time.Millisecond

	got := c.Correct(context.Background(), alternating(InputBits), 1)
	if got.Corrected {
		t.Fatal("expected timeout to leave the frame uncorrected")
	}
}

// #endregion bufconn-tests
