package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"

	"mbaayadmin/internal/domain"
)

func (c *Client) ListCommunityPosts(ctx context.Context, token string) ([]domain.CommunityPost, error) {
	var out []domain.CommunityPost
	if err := c.getList(ctx, "/community/posts/all", "community_posts_all", token, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) MbaayCommunity(ctx context.Context, token string) (*domain.Community, error) {
	var out domain.Community
	if err := c.getObject(ctx, "/community/mbaay", "community_mbaay", token, true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AllCommunities is served by the public community API and needs no token.
func (c *Client) AllCommunities(ctx context.Context) ([]domain.Community, error) {
	body, err := c.do(ctx, call{method: http.MethodGet, base: c.community, path: "/all_communities", endpoint: "all_communities"})
	if err != nil {
		return nil, err
	}
	var out []domain.Community
	if err := decodeList(body, &out); err != nil {
		return nil, fmt.Errorf("decode all_communities: %w", err)
	}
	return out, nil
}

// CreatePost uploads a post as multipart/form-data, tags encoded as
// tags[i][tagId] / tags[i][tagType] and images under posts_Images.
func (c *Client) CreatePost(ctx context.Context, token string, p domain.NewPost) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	_ = w.WriteField("content", p.Content)
	_ = w.WriteField("posterId", p.PosterID)
	for i, t := range p.Tags {
		prefix := "tags[" + strconv.Itoa(i) + "]"
		_ = w.WriteField(prefix+"[tagId]", t.ID)
		_ = w.WriteField(prefix+"[tagType]", t.Type)
	}
	for _, img := range p.Images {
		if err := writeFile(w, "posts_Images", img); err != nil {
			return fmt.Errorf("encode community_post: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("encode community_post: %w", err)
	}
	_, err := c.do(ctx, call{method: http.MethodPost, path: "/community/post", endpoint: "community_post",
		token: token, auth: true, body: &buf, ctype: w.FormDataContentType()})
	return err
}

func (c *Client) EditMbaayCommunity(ctx context.Context, token string, e domain.CommunityEdit) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	_ = w.WriteField("name", e.Name)
	_ = w.WriteField("description", e.Description)
	if e.Logo != nil {
		if err := writeFile(w, "logo", *e.Logo); err != nil {
			return fmt.Errorf("encode community_mbaay_edit: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("encode community_mbaay_edit: %w", err)
	}
	_, err := c.do(ctx, call{method: http.MethodPut, path: "/community/mbaay/edit", endpoint: "community_mbaay_edit",
		token: token, auth: true, body: &buf, ctype: w.FormDataContentType()})
	return err
}

func writeFile(w *multipart.Writer, field string, u domain.Upload) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, u.Filename))
	ct := u.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)
	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = part.Write(u.Data)
	return err
}
