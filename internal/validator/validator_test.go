package validator

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/model"
)

func TestIdentityRequestValidation(t *testing.T) {
	Setup()

	tests := []struct {
		name      string
		req       model.IdentityRequest
		wantField string
	}{
		{name: "valid formatted phone", req: model.IdentityRequest{Name: "Ann", Phone: "+91 98765-43210"}},
		{name: "short phone", req: model.IdentityRequest{Name: "Ann", Phone: "98-765"}, wantField: "phone"},
		{name: "missing name", req: model.IdentityRequest{Phone: "9876543210"}, wantField: "name"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := binding.Validator.ValidateStruct(tc.req)
			if tc.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected a validation error")
			}
			fields := TranslateErrors(err)
			if fields[tc.wantField] == "" {
				t.Fatalf("fields = %v, want an entry for %q", fields, tc.wantField)
			}
		})
	}
}
