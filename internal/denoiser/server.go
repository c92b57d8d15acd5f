package denoiser

import (
	"context"
	"log"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// #region model

// Model maps InputBits noisy bits plus the SNR to OutputBits probabilities.
type Model func(features []float64, snrDB float64) []float64

// SystematicModel reads the payload straight off the systematic prefix of the
// codeword. It is the reference model served by cmd/denoiser-stub; a hard bit
// becomes 0.05 or 0.95, leaning toward 0.5 as the SNR drops.
func SystematicModel(features []float64, snrDB float64) []float64 {
	confidence := 0.45
	if snrDB < 0 {
		confidence = 0.25
	}
	out := make([]float64, OutputBits)
	for i := range out {
		if features[i] > decisionThreshold {
			out[i] = 0.5 + confidence
		} else {
			out[i] = 0.5 - confidence
		}
	}
	return out
}

// #endregion model

// #region server

// Server implements DenoiserServiceServer around a Model.
type Server struct {
	model Model
}

// NewServer returns a server for model; nil selects SystematicModel.
func NewServer(model Model) *Server {
	if model == nil {
		model = SystematicModel
	}
	return &Server{model: model}
}

// Correct validates the request shape and runs the model.
func (s *Server) Correct(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := ctx.Err(); err != nil {
		return nil, status.FromContextError(err).Err()
	}
	values := req.GetFields()["features"].GetListValue().GetValues()
	if len(values) != InputBits+1 {
		return nil, status.Errorf(codes.InvalidArgument, "features: got %d values, want %d", len(values), InputBits+1)
	}
	features := make([]float64, len(values))
	for i, v := range values {
		n, ok := v.GetKind().(*structpb.Value_NumberValue)
		if !ok {
			return nil, status.Errorf(codes.InvalidArgument, "features[%d] is not a number", i)
		}
		features[i] = n.NumberValue
	}
	snrDB := req.GetFields()["snr_db"].GetNumberValue()

	probs := s.model(features[:InputBits], snrDB)
	if len(probs) != OutputBits {
		log.Printf("[AI] model returned %d probabilities, want %d", len(probs), OutputBits)
		return nil, status.Errorf(codes.Internal, "model output has %d values", len(probs))
	}

	out := make([]*structpb.Value, len(probs))
	for i, p := range probs {
		out[i] = structpb.NewNumberValue(p)
	}
	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			"probabilities": structpb.NewListValue(&structpb.ListValue{Values: out}),
		},
	}, nil
}

// #endregion server
