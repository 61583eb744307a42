package app

import (
	"context"

	"github.com/BuidlZone-Labs/zicket-contract/internal/domain"
)

// fakeVerifier passes every caller except the ones listed as denied.
type fakeVerifier struct {
	denied map[string]bool
}

func newFakeVerifier(denied ...string) *fakeVerifier {
	m := make(map[string]bool, len(denied))
	for _, d := range denied {
		m[d] = true
	}
	return &fakeVerifier{denied: m}
}

func (f *fakeVerifier) Verify(_ context.Context, caller string) error {
	if caller == "" || f.denied[caller] {
		return domain.ErrUnauthorized
	}
	return nil
}
