package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gofiber/fiber/v2"

	"mbaayadmin/internal/domain"
	applog "mbaayadmin/internal/log"
	"mbaayadmin/internal/services"
	"mbaayadmin/internal/validate"
)

const (
	maxImages    = 4
	maxImageSize = 5 << 20
)

// ActionHandler turns form posts into mutations. Every outcome is flashed and
// the browser is sent back to the page the form came from.
type ActionHandler struct {
	Actions *services.ActionService
}

func (h *ActionHandler) finish(c *fiber.Ctx, action string, n services.Notification, err error, fields map[string]any, fallback string) error {
	var ve *validate.ValidationError
	switch {
	case err == nil:
		applog.Audit(c, action, fields)
	case errors.Is(err, services.ErrPending):
		applog.Info(c, action+".pending", fields)
	case errors.As(err, &ve):
		applog.Info(c, action+".invalid", map[string]any{"field": ve.Field})
	default:
		applog.Error(c, action+".fail", err, fields)
	}
	setFlash(c, n)
	return c.Redirect(backTo(c, fallback))
}

// POST /actions/subject
func (h *ActionHandler) Subject(c *fiber.Ctx) error {
	typ, id, action := c.FormValue("type"), c.FormValue("id"), c.FormValue("action")
	n, err := h.Actions.SubjectAction(c.UserContext(), caller(c), typ, id, action)
	fallback := "/user-management"
	if t, ok := domain.ParseSubjectType(typ); ok {
		fallback += "?tab=" + string(t)
	}
	return h.finish(c, "admin.subject."+strings.ToLower(action), n, err,
		map[string]any{"type": typ, "id": id}, fallback)
}

// POST /actions/kyc/:id/:decision
func (h *ActionHandler) Kyc(c *fiber.Ctx) error {
	id := c.Params("id")
	var approve bool
	switch c.Params("decision") {
	case "approve":
		approve = true
	case "reject":
	default:
		return notFound(c, "Page not found")
	}
	n, err := h.Actions.ReviewKyc(c.UserContext(), caller(c), id, approve)
	return h.finish(c, "admin.kyc."+c.Params("decision"), n, err, map[string]any{"vendor_id": id}, "/kyc/"+id)
}

// POST /actions/message
func (h *ActionHandler) Message(c *fiber.Ctx) error {
	in := services.PrivateMessageInput{
		RecipientID:   c.FormValue("recipient_id"),
		RecipientType: c.FormValue("recipient_type"),
		Title:         c.FormValue("title"),
		Message:       c.FormValue("message"),
	}
	n, err := h.Actions.SendPrivateMessage(c.UserContext(), caller(c), in)
	return h.finish(c, "message.private", n, err,
		map[string]any{"recipient_id": in.RecipientID, "recipient_type": in.RecipientType}, "/inbox")
}

// POST /actions/broadcast
func (h *ActionHandler) Broadcast(c *fiber.Ctx) error {
	in := services.BroadcastInput{
		Title:   c.FormValue("title"),
		Message: c.FormValue("message"),
		Target:  c.FormValue("target"),
	}
	n, err := h.Actions.Broadcast(c.UserContext(), caller(c), in)
	return h.finish(c, "message.broadcast", n, err, map[string]any{"target": in.Target}, "/inbox")
}

// POST /actions/post
func (h *ActionHandler) Post(c *fiber.Ctx) error {
	post := domain.NewPost{Content: c.FormValue("content")}
	for _, id := range formValues(c, "tag_vendor[]") {
		post.Tags = append(post.Tags, domain.Tag{ID: id, Type: "vendors"})
	}
	for _, id := range formValues(c, "tag_community[]") {
		post.Tags = append(post.Tags, domain.Tag{ID: id, Type: "community"})
	}
	imgs, err := uploads(c, "images", maxImages)
	if err != nil {
		return h.finish(c, "community.post", uploadFailure(err), err, nil, "/mbaay-community")
	}
	post.Images = imgs
	n, err := h.Actions.CreatePost(c.UserContext(), caller(c), post)
	return h.finish(c, "community.post", n, err,
		map[string]any{"tags": len(post.Tags), "images": len(post.Images)}, "/mbaay-community")
}

// POST /actions/community
func (h *ActionHandler) Community(c *fiber.Ctx) error {
	edit := domain.CommunityEdit{Name: c.FormValue("name"), Description: c.FormValue("description")}
	logo, err := uploads(c, "logo", 1)
	if err != nil {
		return h.finish(c, "community.edit", uploadFailure(err), err, nil, "/mbaay-community")
	}
	if len(logo) == 1 {
		edit.Logo = &logo[0]
	}
	n, err := h.Actions.EditCommunity(c.UserContext(), caller(c), edit)
	return h.finish(c, "community.edit", n, err, map[string]any{"logo": edit.Logo != nil}, "/mbaay-community")
}

// formValues reads a repeated field from either form encoding.
func formValues(c *fiber.Ctx, key string) []string {
	var raw []string
	if form, err := c.MultipartForm(); err == nil {
		raw = form.Value[key]
	} else {
		for _, b := range c.Request().PostArgs().PeekMulti(key) {
			raw = append(raw, string(b))
		}
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if id, ok := validate.ID(v); ok {
			out = append(out, id)
		}
	}
	return out
}

func uploads(c *fiber.Ctx, field string, limit int) ([]domain.Upload, error) {
	form, err := c.MultipartForm()
	if err != nil {
		// urlencoded form, no files
		return nil, nil
	}
	var out []domain.Upload
	for _, fh := range form.File[field] {
		if fh.Size == 0 {
			continue
		}
		if len(out) == limit {
			return nil, &validate.ValidationError{Field: field, Message: fmt.Sprintf("At most %d image(s) can be uploaded", limit)}
		}
		up, err := readImage(fh)
		if err != nil {
			return nil, err
		}
		out = append(out, up)
	}
	return out, nil
}

func readImage(fh *multipart.FileHeader) (domain.Upload, error) {
	if fh.Size > maxImageSize {
		return domain.Upload{}, &validate.ValidationError{Field: fh.Filename, Message: "Images must be 5 MB or smaller"}
	}
	f, err := fh.Open()
	if err != nil {
		return domain.Upload{}, fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxImageSize+1))
	if err != nil {
		return domain.Upload{}, fmt.Errorf("read upload %s: %w", fh.Filename, err)
	}
	if len(data) > maxImageSize {
		return domain.Upload{}, &validate.ValidationError{Field: fh.Filename, Message: "Images must be 5 MB or smaller"}
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return domain.Upload{}, &validate.ValidationError{Field: fh.Filename, Message: "Only image files can be uploaded"}
	}
	return domain.Upload{Filename: fh.Filename, ContentType: mt.String(), Data: data}, nil
}

func uploadFailure(err error) services.Notification {
	var ve *validate.ValidationError
	if errors.As(err, &ve) {
		return services.Notification{Kind: services.NoticeError, Message: ve.Message}
	}
	return services.Notification{Kind: services.NoticeError, Message: "Could not read the uploaded file"}
}
