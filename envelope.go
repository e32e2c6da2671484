package gridcube

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
)

const (
	MessageSuccess = "Data processed successfully"
	MessageFailure = "Error processing data"
)

var ErrInvalidEnvelope = errors.New("invalid envelope")

// Envelope is the event delivered by the wireless gateway for each uplink.
type Envelope struct {
	Uplink Uplink `json:"uplink"`
}

type Uplink struct {
	WirelessDeviceID string `json:"WirelessDeviceId"`
	// PayloadData is the base64 encoded device payload
	PayloadData string `json:"PayloadData"`
}

// Payload validates the envelope and returns the decoded payload bytes.
func (e Envelope) Payload() ([]byte, error) {
	if e.Uplink.WirelessDeviceID == "" {
		return nil, fmt.Errorf("%w: missing WirelessDeviceId", ErrInvalidEnvelope)
	}
	if e.Uplink.PayloadData == "" {
		return nil, fmt.Errorf("%w: missing PayloadData", ErrInvalidEnvelope)
	}
	b, err := base64.StdEncoding.DecodeString(e.Uplink.PayloadData)
	if err != nil {
		return nil, fmt.Errorf("%w: PayloadData is not base64: %v", ErrInvalidEnvelope, err)
	}
	return b, nil
}

// Response is returned to the invoking gateway.
type Response struct {
	StatusCode int          `json:"statusCode"`
	Body       ResponseBody `json:"body"`
}

type ResponseBody struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	DeviceID string `json:"device_id,omitempty"`
	Error    string `json:"error,omitempty"`
}

func SuccessResponse(deviceID string) Response {
	return Response{
		StatusCode: http.StatusOK,
		Body: ResponseBody{
			Success:  true,
			Message:  MessageSuccess,
			DeviceID: deviceID,
		},
	}
}

func FailureResponse(err error) Response {
	return Response{
		StatusCode: http.StatusInternalServerError,
		Body: ResponseBody{
			Success: false,
			Message: MessageFailure,
			Error:   err.Error(),
		},
	}
}
