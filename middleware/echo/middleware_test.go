package echomw_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	gobind "github.com/reoring/gobind"
	"github.com/reoring/gobind/codec"
	echomw "github.com/reoring/gobind/middleware/echo"
)

type Signup struct {
	Email string `json:"email" bind:"required"`
}

func TestBindJSON(t *testing.T) {
	b, err := gobind.Bind[Signup](codec.New())
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	e := echo.New()
	e.POST("/", func(c echo.Context) error {
		db, ok := echomw.GetDecoded[Signup](c)
		if !ok {
			return c.NoContent(http.StatusInternalServerError)
		}
		return c.String(http.StatusOK, db.Value.Email)
	}, echomw.BindJSON(b, gobind.DecodeOpt{}))

	cases := []struct {
		name   string
		body   string
		status int
		want   string
	}{
		{name: "ok", body: `{"email":"a@b.c"}`, status: http.StatusOK, want: "a@b.c"},
		{name: "wrong type", body: `{"email":1}`, status: http.StatusBadRequest, want: `"code":"unexpected_token"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body)))
			if rec.Code != tc.status || !strings.Contains(rec.Body.String(), tc.want) {
				t.Fatalf("got %d %s, want %d containing %s", rec.Code, rec.Body.String(), tc.status, tc.want)
			}
		})
	}
}
