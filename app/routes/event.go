package routes

import (
	"context"
	"encoding/base64"
	"fmt"

	"blogapi/app/apierror"
	"blogapi/app/controllers"
)

// Event is an API-gateway style request, as read by the invoke command.
type Event struct {
	HTTPMethod      string            `json:"httpMethod"`
	Path            string            `json:"path"`
	Headers         map[string]string `json:"headers"`
	Body            *string           `json:"body"`
	IsBase64Encoded bool              `json:"isBase64Encoded"`
}

// EventResponse is the gateway style reply to an Event.
type EventResponse struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers"`
	Body       string            `json:"body"`
}

// HandleEvent dispatches a gateway event.
func (d *Dispatcher) HandleEvent(ctx context.Context, ev Event) EventResponse {
	var body []byte
	if ev.Body != nil {
		body = []byte(*ev.Body)
		if ev.IsBase64Encoded {
			decoded, err := base64.StdEncoding.DecodeString(*ev.Body)
			if err != nil {
				return toEvent(controllers.ErrorResponse(
					apierror.Validation(apierror.MsgInvalidBody).WithCause(fmt.Errorf("decode base64 body: %w", err))))
			}
			body = decoded
		}
	}
	resp := d.Dispatch(ctx, &controllers.Request{
		Method:  ev.HTTPMethod,
		Path:    ev.Path,
		Headers: ev.Headers,
		Body:    body,
	})
	return toEvent(resp)
}

func toEvent(resp *controllers.Response) EventResponse {
	return EventResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Body:       string(resp.Body),
	}
}
