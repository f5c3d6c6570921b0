package provider

import (
	"context"
	"errors"

	"webassist/model"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/ollama/ollama/api"
	"github.com/openai/openai-go/v3"
)

// classifyError turns an SDK error into a *model.Fault. Context expiry and
// network failures are transport faults; error statuses from any backend are
// service faults.
func classifyError(op string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return model.NewFault(model.FaultTransport, op, err)
	}

	var ollamaErr api.StatusError
	if errors.As(err, &ollamaErr) {
		return model.NewFault(model.FaultService, op, err)
	}

	var openaiErr *openai.Error
	if errors.As(err, &openaiErr) {
		return model.NewFault(model.FaultService, op, err)
	}

	var anthropicErr *anthropic.Error
	if errors.As(err, &anthropicErr) {
		return model.NewFault(model.FaultService, op, err)
	}

	return model.AsFault(op, err)
}
