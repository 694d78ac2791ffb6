package google

import (
	"context"
	"errors"
	"net"

	"google.golang.org/api/googleapi"

	"github.com/advancementhq/feedback-pipeline/internal/infrastructure/resilience"
)

func classifySheetsError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{
			Retryable:     false,
			RecordFailure: false,
		}
	}
	if resilience.IsCircuitOpen(err) {
		return resilience.ErrorClassification{
			Retryable:     true,
			RecordFailure: true,
		}
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		retryable := apiErr.Code == 429 || apiErr.Code >= 500
		return resilience.ErrorClassification{
			Retryable:     retryable,
			RecordFailure: true,
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.ErrorClassification{
			Retryable:     true,
			RecordFailure: true,
		}
	}

	return resilience.ErrorClassification{
		Retryable:     false,
		RecordFailure: true,
	}
}
