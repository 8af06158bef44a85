package views_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"mbaayadmin/internal/apiclient"
	"mbaayadmin/internal/domain"
	"mbaayadmin/internal/querycache"
	"mbaayadmin/internal/views"
)

func TestCapabilityTable(t *testing.T) {
	v := views.Capabilities(domain.SubjectVendor)
	assert.Equal(t, querycache.Key{"vendors"}, v.CollectionKey)
	assert.Equal(t, querycache.Key{"vendor", "abc"}, v.DetailKey("abc"))

	a := views.Capabilities(domain.SubjectAdmin)
	assert.NotContains(t, a.Actions, domain.ActionDelete)

	blocked := views.Display{Blocked: true}
	open := views.Display{}
	assert.True(t, v.Can(domain.ActionUnblock, blocked))
	assert.False(t, v.Can(domain.ActionBlock, blocked))
	assert.True(t, v.Can(domain.ActionBlock, open))
	assert.True(t, v.Can(domain.ActionDelete, open))
	assert.False(t, a.Can(domain.ActionDelete, open))
}

func TestNormalize(t *testing.T) {
	u := views.NormalizeUser(domain.User{AltID: "u1", Name: "Ada", Email: "ada@x.test", IsVerified: true})
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, "verified", u.Status)
	assert.Equal(t, "A", u.Initial())

	v := views.NormalizeVendor(domain.Vendor{ID: "v1", Name: "Chidi", StoreName: "Chidi Crafts", VerificationStatus: "verified"})
	assert.Equal(t, "Chidi Crafts", v.Name)
	assert.Equal(t, "approved", v.Status)
	assert.Len(t, views.Filter([]views.Display{v}, "chidi", "all", views.DisplayText, views.DisplayStatus), 1)

	ad := views.NormalizeAdmin(domain.Admin{ID: "a1", Role: "Super Admin", IsBlocked: true})
	assert.Equal(t, "-", ad.Name)
	assert.Equal(t, "inactive", ad.Status)
}

func TestDetailStates(t *testing.T) {
	type rec struct{ ID string }
	assert.Equal(t, views.StateReady, views.DetailOf(&rec{"x"}, nil).State)
	assert.Equal(t, views.StateNotFound, views.DetailOf[rec](nil, nil).State)
	assert.Equal(t, views.StateLoading, views.DetailOf[rec](nil, fmt.Errorf("wait: %w", context.DeadlineExceeded)).State)

	d := views.DetailOf[rec](nil, &apiclient.RemoteError{Status: 500, Message: "db down"})
	assert.Equal(t, views.StateError, d.State)
	assert.Equal(t, "db down", d.Message)

	d = views.DetailOf[rec](nil, errors.New("boom"))
	assert.Equal(t, views.StateError, d.State)
	assert.NotEmpty(t, d.Message)
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "1,234,567", views.Count(1234567))
	assert.Equal(t, "$3,000.50", views.Money(3000.5))
	assert.Equal(t, "4.5", views.Rating(4.46))
}
