package access

import (
	"context"
	"testing"
)

func TestGoodFromContext(t *testing.T) {
	ctx := WithContext(context.TODO(), Admin)
	if r := FromContext(ctx); r != Admin {
		t.Errorf("FromContext(ctx) => %d, want %d", r, Admin)
	}
}

func TestBadFromContext(t *testing.T) {
	ctx := context.TODO()
	if r := FromContext(ctx); r != -1 {
		t.Errorf("FromContext(ctx) => %d, want %d", r, -1)
	}
}
