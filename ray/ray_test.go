package ray

import (
	"testing"

	"checkertrace/vmath/vec3"

	"github.com/google/go-cmp/cmp"
)

func TestDerived(t *testing.T) {
	r := Ray{Start: vec3.T{1, 1, 1}, End: vec3.T{1, 4, 5}}

	if got := r.Length(); got != 5 {
		t.Errorf("Length() = %v, want 5", got)
	}
	if diff := cmp.Diff(r.Direction(), vec3.T{0, 0.6, 0.8}); diff != "" {
		t.Errorf("Bad direction; diff (-got +want)\n%s", diff)
	}
	if diff := cmp.Diff(r.Eval(2), vec3.T{1, 7, 9}); diff != "" {
		t.Errorf("Bad Eval; diff (-got +want)\n%s", diff)
	}
}
