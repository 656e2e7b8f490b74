package httpx

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Nikhil2261/iot-backend/internal/apperr"
)

func TestWriteAppErrorMapsKinds(t *testing.T) {
	cases := []struct {
		kind   apperr.Kind
		status int
	}{
		{apperr.KindInvalidRequest, 400},
		{apperr.KindUnauthorized, 401},
		{apperr.KindTokenExpired, 401},
		{apperr.KindNotFound, 404},
		{apperr.KindConflict, 409},
		{apperr.KindTransient, 503},
		{apperr.KindInternal, 500},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		WriteAppError(rr, apperr.New(tc.kind, "boom"))
		if rr.Code != tc.status {
			t.Fatalf("%s: expected status %d, got %d", tc.kind, tc.status, rr.Code)
		}
		var body struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
			t.Fatal(err)
		}
		if body.Error.Code != string(tc.kind) {
			t.Fatalf("expected stable code %q, got %q", tc.kind, body.Error.Code)
		}
	}
}

func TestWriteAppErrorHidesInternalDetail(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteAppError(rr, apperr.Wrap(apperr.KindInternal, "store failure", assertError("password=secret")))
	if strings.Contains(rr.Body.String(), "secret") {
		t.Fatal("internal detail must not leak to the client")
	}
}

type assertError string

func (e assertError) Error() string { return string(e) }

func TestReadJSONRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"pin":1,"bogus":true}`))
	var dst struct {
		Pin int `json:"pin"`
	}
	if err := ReadJSON(req, &dst); err == nil {
		t.Fatal("unknown fields must be rejected")
	}
}
