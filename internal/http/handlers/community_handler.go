package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"mbaayadmin/internal/domain"
	"mbaayadmin/internal/services"
	"mbaayadmin/internal/views"
)

type CommunityHandler struct {
	reader
	Actions *services.ActionService
}

const commentPreview = 3

type PostCard struct {
	ID        string
	Author    string
	Avatar    string
	Content   string
	Images    []string
	Tags      []string
	Likes     int
	Comments  []domain.Comment
	More      int
	Total     int
	Open      bool
	ToggleURL string
	Date      string
}

func postCard(p domain.CommunityPost, open bool, links Links) PostCard {
	card := PostCard{
		ID:      p.ID,
		Author:  firstOf(p.Author(), "Unknown"),
		Content: p.Content,
		Images:  p.Images,
		Likes:   len(p.Likes),
		Total:   len(p.Comments),
		Open:    open,
		Date:    p.CreatedTime.Display(),
	}
	if p.Community != nil {
		card.Avatar = p.Community.Images
	}
	for _, t := range p.Tags {
		if l := t.Label(); l != "" {
			card.Tags = append(card.Tags, l)
		}
	}
	card.Comments = p.Comments
	if !open && len(p.Comments) > commentPreview {
		card.Comments = p.Comments[:commentPreview]
		card.More = len(p.Comments) - commentPreview
	}
	if open {
		card.ToggleURL = links.Current()
	} else {
		card.ToggleURL = links.with("open", p.ID)
	}
	return card
}

// GET /all-post
func (h *CommunityHandler) Posts(c *fiber.Ctx) error {
	ctx, cancel := h.ctx(c)
	defer cancel()
	q := listQuery(c)

	posts, err := h.Queries.CommunityPosts(ctx, caller(c))
	if err != nil {
		st, _ := views.StateOf(err)
		return render(c, "posts", fiber.Map{"State": st, "Message": loadError(c, "posts.load.fail", err), "Links": newLinks("/all-post", q, nil), "Search": newLinks("/all-post", q, nil).Box("Search posts", nil)})
	}
	l := views.BuildListing(posts, q, views.ListSpec[domain.CommunityPost]{
		PageSize: 10,
		Text:     func(p domain.CommunityPost) []string { return []string{p.Content, p.Author()} },
		Time:     func(p domain.CommunityPost) time.Time { return p.CreatedTime.Time },
	})
	links := newLinks("/all-post", l.Query, nil)
	open := c.Query("open")
	cards := make([]PostCard, 0, len(l.Rows))
	for _, p := range l.Rows {
		cards = append(cards, postCard(p, p.ID != "" && p.ID == open, links))
	}
	return render(c, "posts", fiber.Map{
		"State":   views.StateReady,
		"Listing": l,
		"Cards":   cards,
		"Links":   links,
		"Search":  links.Box("Search posts", nil),
	})
}

type TagOption struct {
	ID    string
	Label string
}

// GET /mbaay-community
func (h *CommunityHandler) Community(c *fiber.Ctx) error {
	ctx, cancel := h.ctx(c)
	defer cancel()
	cl := caller(c)

	comm, err := h.Queries.MbaayCommunity(ctx, cl)
	if comm != nil && comm.ID == "" && comm.Name == "" {
		comm = nil
	}
	detail := views.DetailOf(comm, err)
	if detail.State == views.StateError {
		loadError(c, "community.load.fail", err)
	}
	data := fiber.Map{"Detail": detail, "Self": "/mbaay-community"}
	if detail.State != views.StateReady {
		return render(c, "community", data)
	}

	m := detail.Item
	links := newLinks("/mbaay-community", views.ListQuery{}, nil)
	posts := views.SortByTime(m.Posts, func(p domain.CommunityPost) time.Time { return p.CreatedTime.Time }, false)
	cards := make([]PostCard, 0, len(posts))
	for _, p := range posts {
		cards = append(cards, postCard(p, false, links))
	}
	data["Community"] = m
	data["Members"] = len(m.Members)
	data["Cards"] = cards
	data["PostPending"] = h.Actions.Pending(cl.SID, "community.post", cl.Principal.ID)

	// Tag choices are optional; the form still works without them.
	var vendorTags, communityTags []TagOption
	if vs, err := h.Queries.Vendors(ctx, cl); err == nil {
		for _, v := range vs {
			vendorTags = append(vendorTags, TagOption{ID: v.Key(), Label: firstOf(v.StoreName, v.Name, v.Key())})
		}
	} else {
		loadError(c, "community.tags.vendors.fail", err)
	}
	if cs, err := h.Queries.Communities(ctx, cl); err == nil {
		for _, cm := range cs {
			communityTags = append(communityTags, TagOption{ID: cm.ID, Label: firstOf(cm.Name, cm.ID)})
		}
	} else {
		loadError(c, "community.tags.communities.fail", err)
	}
	data["VendorTags"] = vendorTags
	data["CommunityTags"] = communityTags
	return render(c, "community", data)
}
