package auth

import (
	"context"
	"encoding/json"
	"errors"
)

// Challenge is a pending one-time passcode login. The method ID is single-use
// and only valid for the email it was issued to.
type Challenge struct {
	Email    string
	MethodID string
}

type OtpRequester struct {
	session *Session
}

func NewOtpRequester(session *Session) *OtpRequester {
	return &OtpRequester{session: session}
}

// Request asks the dashboard to email a passcode to email and returns the
// challenge that the passcode must be verified against.
func (r *OtpRequester) Request(ctx context.Context, email string) (Challenge, error) {
	payload := encodeBatch(withInput(map[string]string{"email": email}))
	resp, err := r.session.Post(ctx, loginEmailPath, batchQuery(), payload)
	if err != nil || !resp.OK() {
		return Challenge{}, stepError(ErrOtpRequestFailed, resp, err)
	}

	entries, err := decodeBatch(resp.Body)
	if err != nil {
		return Challenge{}, NewError(ErrOtpRequestFailed, ErrMalformedResponse, resp.StatusCode, string(resp.Body), "", err)
	}
	if len(entries) == 0 {
		return Challenge{}, NewError(ErrOtpRequestFailed, ErrMalformedResponse, resp.StatusCode, string(resp.Body), "empty batch", nil)
	}
	if e := entries[0].Error; e != nil {
		return Challenge{}, NewError(ErrOtpRequestFailed, ErrMalformedResponse, resp.StatusCode, string(resp.Body), e.message(), nil)
	}

	var login struct {
		MethodID string `json:"methodId"`
	}
	if data := entries[0].data(); len(data) > 0 {
		if err := json.Unmarshal(data, &login); err != nil {
			return Challenge{}, NewError(ErrOtpRequestFailed, ErrMalformedResponse, resp.StatusCode, string(resp.Body), "", err)
		}
	}
	if login.MethodID == "" {
		return Challenge{}, NewError(ErrOtpRequestFailed, ErrMalformedResponse, resp.StatusCode, string(resp.Body), "methodId missing", nil)
	}

	return Challenge{Email: email, MethodID: login.MethodID}, nil
}

type OtpVerifier struct {
	session *Session
}

func NewOtpVerifier(session *Session) *OtpVerifier {
	return &OtpVerifier{session: session}
}

// Verify submits code for challenge. On success the server sets the session
// cookie, which the session keeps for later calls. A failed verification is
// final: the code cannot be resubmitted.
func (v *OtpVerifier) Verify(ctx context.Context, challenge Challenge, code string) error {
	if challenge.MethodID == "" {
		return NewError(ErrOtpVerificationFailed, ErrMalformedResponse, 0, "", "", errors.New("challenge has no method id"))
	}

	payload := encodeBatch(withInput(map[string]string{
		"code":     code,
		"methodId": challenge.MethodID,
	}))
	resp, err := v.session.Post(ctx, authenticateOtpPath, batchQuery(), payload)
	if err != nil || !resp.OK() {
		return stepError(ErrOtpVerificationFailed, resp, err)
	}

	if msg := errorMessage(resp.Body); msg != "" {
		return NewError(ErrOtpVerificationFailed, ErrHTTPStatus, resp.StatusCode, string(resp.Body), msg, nil)
	}
	return nil
}
