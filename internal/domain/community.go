package domain

import (
	"bytes"
	"encoding/json"
)

type Poster struct {
	ID        string `json:"_id"`
	Name      string `json:"name"`
	StoreName string `json:"storeName"`
}

type CommunityRef struct {
	ID     string `json:"_id"`
	Name   string `json:"name"`
	Images string `json:"community_Images"`
}

// Tag is either a bare string or {tagId, tagType, name} depending on the
// backend version.
type Tag struct {
	ID   string `json:"tagId"`
	Type string `json:"tagType"`
	Name string `json:"name"`
}

func (t *Tag) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &t.Name)
	}
	type plain Tag
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return nil
	}
	*t = Tag(p)
	return nil
}

func (t Tag) Label() string { return firstNonEmpty(t.Name, t.ID) }

type Comment struct {
	ID            string    `json:"_id"`
	CommentPoster string    `json:"comment_poster"`
	User          string    `json:"user"`
	Text          string    `json:"text"`
	CreatedAt     Timestamp `json:"createdAt"`
}

func (c Comment) Author() string { return firstNonEmpty(c.CommentPoster, c.User, "Unknown") }

type CommunityPost struct {
	ID          string            `json:"_id"`
	Poster      *Poster           `json:"poster"`
	PosterType  string            `json:"posterType"`
	Community   *CommunityRef     `json:"community"`
	Content     string            `json:"content"`
	Images      []string          `json:"posts_Images"`
	Tags        []Tag             `json:"tags"`
	Likes       []json.RawMessage `json:"likes"`
	Comments    []Comment         `json:"comments"`
	CreatedTime Timestamp         `json:"createdTime"`
}

// Author is the community name, the posting store or the poster type.
func (p CommunityPost) Author() string {
	var community, store string
	if p.Community != nil {
		community = p.Community.Name
	}
	if p.Poster != nil {
		store = firstNonEmpty(p.Poster.StoreName, p.Poster.Name)
	}
	return firstNonEmpty(community, store, p.PosterType)
}

type Community struct {
	ID          string            `json:"_id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Logo        string            `json:"logo"`
	Images      string            `json:"community_Images"`
	Members     []json.RawMessage `json:"members"`
	Posts       []CommunityPost   `json:"posts"`
	CreatedAt   Timestamp         `json:"createdAt"`
}

// NewPost is what the dashboard submits when an admin posts to the
// community.
type NewPost struct {
	PosterID string
	Content  string
	Tags     []Tag
	Images   []Upload
}

type CommunityEdit struct {
	Name        string
	Description string
	Logo        *Upload
}

// Upload is a file received from the browser and forwarded to the backend.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}
