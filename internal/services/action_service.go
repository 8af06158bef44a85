package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"mbaayadmin/internal/apiclient"
	"mbaayadmin/internal/domain"
	"mbaayadmin/internal/querycache"
	"mbaayadmin/internal/validate"
)

type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notification is the one-line outcome shown after a mutation.
type Notification struct {
	Kind    NoticeKind
	Message string
}

func success(msg string) Notification { return Notification{Kind: NoticeSuccess, Message: msg} }
func failure(msg string) Notification { return Notification{Kind: NoticeError, Message: msg} }

// ActionService runs write operations. A successful action invalidates its
// cache keys before returning; a failed one touches nothing and is never
// retried.
type ActionService struct {
	API    *apiclient.Client
	Caches *querycache.Registry

	mu      sync.Mutex
	pending map[string]struct{}
}

func NewActionService(api *apiclient.Client, caches *querycache.Registry) *ActionService {
	return &ActionService{API: api, Caches: caches, pending: make(map[string]struct{})}
}

func (s *ActionService) claim(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		s.pending = make(map[string]struct{})
	}
	if _, busy := s.pending[key]; busy {
		return false
	}
	s.pending[key] = struct{}{}
	return true
}

func (s *ActionService) release(key string) {
	s.mu.Lock()
	delete(s.pending, key)
	s.mu.Unlock()
}

// Pending reports whether action on target is running for sid.
func (s *ActionService) Pending(sid, action, target string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, busy := s.pending[sid+"|"+action+"|"+target]
	return busy
}

// PendingAny reports whether action is running for sid on any target.
func (s *ActionService) PendingAny(sid, action string) bool {
	prefix := sid + "|" + action + "|"
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.pending {
		if strings.HasPrefix(k, prefix) {
			return true
		}
	}
	return false
}

type mutation struct {
	name       string
	target     string
	invalidate []querycache.Key
	ok         string
	fallback   string
	do         func(ctx context.Context, token string) error
}

func (s *ActionService) run(ctx context.Context, c Caller, m mutation) (Notification, error) {
	key := c.SID + "|" + m.name + "|" + m.target
	if !s.claim(key) {
		return failure("That request is already being processed."), ErrPending
	}
	defer s.release(key)

	if err := m.do(ctx, c.token()); err != nil {
		return failure(apiclient.Message(err, m.fallback)), fmt.Errorf("%s %s: %w", m.name, m.target, err)
	}
	if len(m.invalidate) > 0 {
		s.Caches.For(c.SID).Invalidate(m.invalidate...)
	}
	return success(m.ok), nil
}

func invalid(err error) (Notification, error) {
	var ve *validate.ValidationError
	if errors.As(err, &ve) {
		return failure(ve.Message), err
	}
	return failure("Please check the form and try again."), err
}

// SubjectAction blocks, unblocks or deletes a user, vendor or admin.
func (s *ActionService) SubjectAction(ctx context.Context, c Caller, typ, id, action string) (Notification, error) {
	t, ok := domain.ParseSubjectType(typ)
	if !ok {
		return invalid(&validate.ValidationError{Field: "userType", Message: "Unknown account type"})
	}
	a, ok := domain.ParseSubjectAction(action)
	if !ok {
		return invalid(&validate.ValidationError{Field: "action", Message: "Unknown action"})
	}
	id, err := validate.RequiredText("userId", id)
	if err != nil {
		return invalid(err)
	}
	return s.run(ctx, c, mutation{
		name:       "subject." + string(a),
		target:     string(t) + ":" + id,
		invalidate: []querycache.Key{SubjectKey(t, id), CollectionKey(t)},
		ok:         fmt.Sprintf("%s %s successfully", titleCase(string(t)), pastTense(a)),
		fallback:   fmt.Sprintf("Failed to %s %s", a, t),
		do: func(ctx context.Context, token string) error {
			return s.API.SubjectAction(ctx, token, id, t, a)
		},
	})
}

// ReviewKyc approves or rejects a vendor's KYC submission.
func (s *ActionService) ReviewKyc(ctx context.Context, c Caller, vendorID string, approve bool) (Notification, error) {
	vendorID, err := validate.RequiredText("vendorId", vendorID)
	if err != nil {
		return invalid(err)
	}
	m := mutation{
		// approve and reject on one vendor share the guard
		name:   "kyc.review",
		target: vendorID,
		invalidate: []querycache.Key{
			KeyKycRequests,
			SubjectKey(domain.SubjectVendor, vendorID),
			KeyVendors,
		},
		ok:       "KYC rejected",
		fallback: "Rejection failed",
		do: func(ctx context.Context, token string) error {
			return s.API.RejectKyc(ctx, token, vendorID)
		},
	}
	if approve {
		m.ok, m.fallback = "KYC approved", "Approval failed"
		m.do = func(ctx context.Context, token string) error {
			return s.API.ApproveKyc(ctx, token, vendorID)
		}
	}
	return s.run(ctx, c, m)
}

type PrivateMessageInput struct {
	RecipientID   string
	RecipientType string
	Title         string
	Message       string
}

func (s *ActionService) SendPrivateMessage(ctx context.Context, c Caller, in PrivateMessageInput) (Notification, error) {
	t, ok := domain.ParseSubjectType(in.RecipientType)
	if !ok {
		return invalid(&validate.ValidationError{Field: "recipientType", Message: "Choose who receives the message"})
	}
	rid, err := validate.RequiredText("recipientId", in.RecipientID)
	if err != nil {
		return invalid(err)
	}
	title, err := validate.RequiredText("title", in.Title)
	if err != nil {
		return invalid(err)
	}
	body, err := validate.RequiredText("message", in.Message)
	if err != nil {
		return invalid(err)
	}
	msg := apiclient.PrivateMessage{RecipientID: rid, RecipientType: string(t), Title: title, Message: body}
	return s.run(ctx, c, mutation{
		name:     "message.private",
		target:   string(t) + ":" + rid,
		ok:       "Message sent",
		fallback: "Failed to send message",
		do: func(ctx context.Context, token string) error {
			return s.API.SendPrivateMessage(ctx, token, msg)
		},
	})
}

var broadcastTargets = map[string]bool{"all": true, "users": true, "vendors": true, "admins": true}

type BroadcastInput struct {
	Title   string
	Message string
	Target  string
}

func (s *ActionService) Broadcast(ctx context.Context, c Caller, in BroadcastInput) (Notification, error) {
	target := strings.ToLower(strings.TrimSpace(in.Target))
	if target == "" {
		target = "all"
	}
	if !broadcastTargets[target] {
		return invalid(&validate.ValidationError{Field: "targetUsers", Message: "Choose who receives the broadcast"})
	}
	title, err := validate.RequiredText("title", in.Title)
	if err != nil {
		return invalid(err)
	}
	body, err := validate.RequiredText("message", in.Message)
	if err != nil {
		return invalid(err)
	}
	msg := apiclient.BroadcastMessage{Title: title, Message: body, TargetUsers: target}
	return s.run(ctx, c, mutation{
		name:     "message.broadcast",
		target:   target,
		ok:       "Message broadcast successful",
		fallback: "Failed to broadcast message",
		do: func(ctx context.Context, token string) error {
			return s.API.Broadcast(ctx, token, msg)
		},
	})
}

// CreatePost publishes a post to the community as the signed-in admin.
func (s *ActionService) CreatePost(ctx context.Context, c Caller, p domain.NewPost) (Notification, error) {
	content, err := validate.RequiredText("content", p.Content)
	if err != nil {
		return invalid(err)
	}
	p.Content = content
	if p.PosterID == "" {
		p.PosterID = c.Principal.ID
	}
	return s.run(ctx, c, mutation{
		name:       "community.post",
		target:     p.PosterID,
		invalidate: []querycache.Key{KeyCommunityPosts, KeyMbaayCommunity},
		ok:         "Post created successfully",
		fallback:   "Failed to create post",
		do: func(ctx context.Context, token string) error {
			return s.API.CreatePost(ctx, token, p)
		},
	})
}

func (s *ActionService) EditCommunity(ctx context.Context, c Caller, e domain.CommunityEdit) (Notification, error) {
	name, err := validate.RequiredText("name", e.Name)
	if err != nil {
		return invalid(err)
	}
	e.Name = name
	e.Description = strings.TrimSpace(e.Description)
	return s.run(ctx, c, mutation{
		name:       "community.edit",
		target:     "mbaay",
		invalidate: []querycache.Key{KeyMbaayCommunity, KeyCommunities},
		ok:         "Community updated",
		fallback:   "Failed to update community",
		do: func(ctx context.Context, token string) error {
			return s.API.EditMbaayCommunity(ctx, token, e)
		},
	})
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func pastTense(a domain.SubjectAction) string {
	if a == domain.ActionDelete {
		return "deleted"
	}
	return string(a) + "ed"
}
