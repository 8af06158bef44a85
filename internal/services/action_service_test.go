package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mbaayadmin/internal/domain"
	"mbaayadmin/internal/querycache"
	"mbaayadmin/internal/services"
	"mbaayadmin/internal/validate"
)

func TestBlockVendorInvalidatesDetailAndCollection(t *testing.T) {
	b, api := newBackend(t)
	b.on(http.MethodGet, "/vendors/all", reply(200, `{"data":[{"_id":"abc","storeName":"Ade Crafts"}]}`))
	b.on(http.MethodGet, "/one_vendor/abc", reply(200, `{"data":{"_id":"abc","storeName":"Ade Crafts"}}`))
	b.on(http.MethodGet, "/users/all", reply(200, `{"data":[]}`))
	b.on(http.MethodPost, "/user/action", reply(200, `{"message":"Vendor blocked"}`))

	caches := registry()
	q := &services.QueryService{API: api, Caches: caches}
	acts := services.NewActionService(api, caches)
	c := caller("sid-1")
	ctx := context.Background()

	_, err := q.Vendors(ctx, c)
	require.NoError(t, err)
	_, err = q.Vendor(ctx, c, "abc")
	require.NoError(t, err)
	_, err = q.Users(ctx, c)
	require.NoError(t, err)

	n, err := acts.SubjectAction(ctx, c, "vendor", "abc", "block")
	require.NoError(t, err)
	assert.Equal(t, services.NoticeSuccess, n.Kind)
	assert.Equal(t, "Vendor blocked successfully", n.Message)

	var sent map[string]string
	require.NoError(t, json.Unmarshal(b.body(http.MethodPost, "/user/action"), &sent))
	assert.Equal(t, map[string]string{"userId": "abc", "userType": "vendor", "action": "block"}, sent)

	assert.Equal(t, querycache.Idle, q.Peek(c, querycache.Key{"vendor", "abc"}).State)
	assert.Equal(t, querycache.Idle, q.Peek(c, querycache.Key{"vendors"}).State)
	assert.Equal(t, querycache.Ready, q.Peek(c, querycache.Key{"users"}).State, "unrelated keys stay cached")

	_, err = q.Vendors(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, 2, b.count(http.MethodGet, "/vendors/all"), "next read after the action refetches")
}

func TestFailedActionInvalidatesNothing(t *testing.T) {
	b, api := newBackend(t)
	b.on(http.MethodGet, "/view_all_kyc_requests", reply(200, `{"data":[{"_id":"v9","kycStatus":"Pending"}]}`))
	b.on(http.MethodPatch, "/approve_kyc/v9", reply(403, `{"message":"Only super admins can approve"}`))

	caches := registry()
	q := &services.QueryService{API: api, Caches: caches}
	acts := services.NewActionService(api, caches)
	c := caller("sid-2")

	_, err := q.KycRequests(context.Background(), c)
	require.NoError(t, err)

	n, err := acts.ReviewKyc(context.Background(), c, "v9", true)
	require.Error(t, err)
	assert.Equal(t, services.NoticeError, n.Kind)
	assert.Equal(t, "Only super admins can approve", n.Message)
	assert.Equal(t, 1, b.count(http.MethodPatch, "/approve_kyc/v9"), "no retry")
	assert.Equal(t, querycache.Ready, q.Peek(c, services.KeyKycRequests).State)
}

func TestPrivateMessageValidationBlocksDispatch(t *testing.T) {
	b, api := newBackend(t)
	b.on(http.MethodPost, "/private-message", reply(201, `{"message":"sent"}`))
	acts := services.NewActionService(api, registry())
	c := caller("sid-3")

	n, err := acts.SendPrivateMessage(context.Background(), c, services.PrivateMessageInput{
		RecipientID: "u1", RecipientType: "user", Title: "   ", Message: "hello",
	})
	var ve *validate.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "title", ve.Field)
	assert.Equal(t, services.NoticeError, n.Kind)
	assert.Equal(t, 0, b.count(http.MethodPost, "/private-message"))

	n, err = acts.SendPrivateMessage(context.Background(), c, services.PrivateMessageInput{
		RecipientID: "u1", RecipientType: "user", Title: "Order delay", Message: "Your order ships Monday",
	})
	require.NoError(t, err)
	assert.Equal(t, services.Notification{Kind: services.NoticeSuccess, Message: "Message sent"}, n)
	assert.Equal(t, 1, b.count(http.MethodPost, "/private-message"))
}

func TestDuplicateSubmissionWhilePending(t *testing.T) {
	b, api := newBackend(t)
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	b.on(http.MethodPost, "/broadcast", func(w http.ResponseWriter, r *http.Request) {
		once.Do(func() { close(started) })
		<-release
		w.WriteHeader(http.StatusOK)
	})
	acts := services.NewActionService(api, registry())
	c := caller("sid-4")
	in := services.BroadcastInput{Title: "Maintenance", Message: "Down at 2am", Target: "vendors"}

	done := make(chan error, 1)
	go func() {
		_, err := acts.Broadcast(context.Background(), c, in)
		done <- err
	}()
	<-started
	assert.True(t, acts.Pending("sid-4", "message.broadcast", "vendors"))
	assert.True(t, acts.PendingAny("sid-4", "message.broadcast"))
	assert.False(t, acts.PendingAny("sid-4", "message.private"))

	_, err := acts.Broadcast(context.Background(), c, in)
	assert.True(t, errors.Is(err, services.ErrPending))

	// another session is not blocked by the guard
	assert.False(t, acts.Pending("sid-5", "message.broadcast", "vendors"))

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, b.count(http.MethodPost, "/broadcast"))
	assert.False(t, acts.Pending("sid-4", "message.broadcast", "vendors"))
	assert.False(t, acts.PendingAny("sid-4", "message.broadcast"))
}

func TestCreatePostInvalidatesCommunityKeys(t *testing.T) {
	b, api := newBackend(t)
	b.on(http.MethodGet, "/community/posts/all", reply(200, `{"data":[]}`))
	b.on(http.MethodPost, "/community/post", reply(201, `{"message":"created"}`))
	caches := registry()
	q := &services.QueryService{API: api, Caches: caches}
	acts := services.NewActionService(api, caches)
	c := caller("sid-6")

	_, err := q.CommunityPosts(context.Background(), c)
	require.NoError(t, err)

	_, err = acts.CreatePost(context.Background(), c, domain.NewPost{Content: ""})
	require.Error(t, err)
	assert.Equal(t, querycache.Ready, q.Peek(c, services.KeyCommunityPosts).State)

	n, err := acts.CreatePost(context.Background(), c, domain.NewPost{Content: "Welcome vendors"})
	require.NoError(t, err)
	assert.Equal(t, services.NoticeSuccess, n.Kind)
	assert.Equal(t, querycache.Idle, q.Peek(c, services.KeyCommunityPosts).State)
}

func TestSubjectActionRejectsUnknownType(t *testing.T) {
	_, api := newBackend(t)
	acts := services.NewActionService(api, registry())
	_, err := acts.SubjectAction(context.Background(), caller("s"), "robot", "abc", "block")
	var ve *validate.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "userType", ve.Field)
}
