package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func record(t *testing.T, fn func(c echo.Context) error) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	if err := fn(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

func TestAppErrorResponseCarriesStatusAndCode(t *testing.T) {
	rec := record(t, func(c echo.Context) error {
		return AppErrorResponse(c, NotFoundErrorf("no signal for %s", "BTC"))
	})

	var resp struct {
		Status int        `json:"status"`
		Data   []AppError `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != http.StatusNotFound {
		t.Fatalf("expected 404 in envelope, got %d", resp.Status)
	}
	if len(resp.Data) != 1 || resp.Data[0].Code != "ERR_NOT_FOUND" {
		t.Fatalf("unexpected error list: %s", rec.Body.String())
	}
	if resp.Data[0].Message != "no signal for BTC" {
		t.Fatalf("unexpected message: %q", resp.Data[0].Message)
	}
}

func TestAppErrorResponseFallsBackToInternal(t *testing.T) {
	rec := record(t, func(c echo.Context) error {
		return AppErrorResponse(c, errors.New("boom"))
	})

	var resp struct {
		Status int `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != http.StatusInternalServerError {
		t.Fatalf("expected 500 in envelope, got %d", resp.Status)
	}
}

func TestBadRequestErrorShape(t *testing.T) {
	err := BadRequestError("price must be positive")
	if err.Status != http.StatusBadRequest || err.Code != "ERR_BAD_REQUEST" {
		t.Fatalf("unexpected error: %+v", err)
	}
	if err.Error() != "price must be positive" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}
