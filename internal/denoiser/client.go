// Package denoiser is the gRPC boundary to the learned bit-correction model.
package denoiser

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/satlink/go-controller/internal/bitbuf"
)

// #region types

const (
	// InputBits is the number of noisy codeword bits the model reads.
	InputBits = 255
	// OutputBits is the number of payload bits the model predicts.
	OutputBits = 223

	// DefaultTimeout bounds one inference call.
	DefaultTimeout = 2 * time.Second

	decisionThreshold = 0.5
)

// ErrBadResponse reports a reply that does not carry OutputBits numeric
// probabilities.
var ErrBadResponse = errors.New("denoiser: malformed response")

// Correction is the outcome of one correction attempt. Bits is set only when
// Corrected is true; Reason explains a skipped or failed attempt.
type Correction struct {
	Corrected bool
	Bits      bitbuf.Bits
	Reason    string
}

// Corrector is what the transmission pipeline needs from the model.
type Corrector interface {
	Correct(ctx context.Context, noisy bitbuf.Bits, snrDB float64) Correction
}

// #endregion types

// #region client-struct

// Client wraps the gRPC connection to the inference service.
type Client struct {
	conn    *grpc.ClientConn
	client  DenoiserServiceClient
	timeout time.Duration
}

// NewClient connects to the inference service. The connection is lazy, so an
// unreachable address surfaces on the first call, not here.
func NewClient(addr string, timeout time.Duration) (*Client, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	c := NewClientWithService(NewDenoiserServiceClient(conn), timeout)
	c.conn = conn
	return c, nil
}

// NewClientWithService creates a Client around an existing service
// implementation. Used for testing without a real connection.
func NewClientWithService(svc DenoiserServiceClient, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{client: svc, timeout: timeout}
}

// Close shuts down the gRPC connection, if the client owns one.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// #endregion client-struct

// #region infer

// Infer sends one feature vector and returns the raw per-bit probabilities.
func (c *Client) Infer(ctx context.Context, features []float64, snrDB float64) ([]float64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.Correct(ctx, newRequest(features, snrDB))
	if err != nil {
		return nil, fmt.Errorf("correct rpc: %w", err)
	}
	probs, err := parseProbabilities(resp)
	if err != nil {
		return nil, err
	}
	return probs, nil
}

// #endregion infer

// #region correct

// Correct runs the model over the noisy codeword bits. Failures of any kind
// come back as an uncorrected Correction and are logged.
func (c *Client) Correct(ctx context.Context, noisy bitbuf.Bits, snrDB float64) Correction {
	features := noisy.Fit(InputBits).Floats()
	probs, err := c.Infer(ctx, features, snrDB)
	if err != nil {
		log.Printf("[AI] correction skipped: %v", err)
		return Correction{Reason: err.Error()}
	}
	return Correction{
		Corrected: true,
		Bits:      bitbuf.Threshold(probs, decisionThreshold),
	}
}

// #endregion correct

// #region wire

func newRequest(features []float64, snrDB float64) *structpb.Struct {
	values := make([]*structpb.Value, 0, len(features)+1)
	for _, f := range features {
		values = append(values, structpb.NewNumberValue(f))
	}
	values = append(values, structpb.NewNumberValue(snrDB))
	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			"features": structpb.NewListValue(&structpb.ListValue{Values: values}),
			"snr_db":   structpb.NewNumberValue(snrDB),
		},
	}
}

func parseProbabilities(resp *structpb.Struct) ([]float64, error) {
	list := resp.GetFields()["probabilities"].GetListValue()
	if list == nil {
		return nil, fmt.Errorf("%w: no probabilities list", ErrBadResponse)
	}
	values := list.GetValues()
	if len(values) != OutputBits {
		return nil, fmt.Errorf("%w: got %d probabilities, want %d", ErrBadResponse, len(values), OutputBits)
	}
	probs := make([]float64, len(values))
	for i, v := range values {
		n, ok := v.GetKind().(*structpb.Value_NumberValue)
		if !ok {
			return nil, fmt.Errorf("%w: probability %d is not a number", ErrBadResponse, i)
		}
		probs[i] = n.NumberValue
	}
	return probs, nil
}

// #endregion wire
