package wpmirror

import "encoding/json"

// String returns the value at key as a string, or "" if absent or not a
// string.
func (it Item) String(key string) string {
	s, _ := it[key].(string)
	return s
}

// Int returns the value at key as an int64, tolerating the float64 shape
// JSON decoding produces. Absent or non-numeric values yield zero.
func (it Item) Int(key string) int64 {
	switch v := it[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	case json.Number:
		n, _ := v.Int64()
		return n
	}
	return 0
}

// Rendered returns the "rendered" member of the nested object at key.
// WordPress wraps title, content and excerpt this way.
func (it Item) Rendered(key string) string {
	obj, _ := it[key].(map[string]any)
	s, _ := obj["rendered"].(string)
	return s
}

// JSON returns the value at key re-encoded as compact JSON, or "" if the
// key is absent.
func (it Item) JSON(key string) string {
	v, ok := it[key]
	if !ok {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// ExtractContent maps a loosely-typed remote item into a canonical
// Content record and computes its fingerprint. Missing optional fields
// default to empty strings or zero. Returns EINVALID only when the item
// lacks its remote ID.
//
// The fingerprint input differs by kind: posts, pages and comments hash
// the rendered body only, while users, categories and tags hash a
// concatenation of name, description and url-or-slug since they carry no
// body of their own.
func ExtractContent(kind Kind, item Item) (*Content, error) {
	id := item.Int("id")
	if id <= 0 {
		return nil, Errorf(EINVALID, "%s item missing remote ID", kind)
	}

	c := &Content{Kind: kind, RemoteID: id}

	switch kind {
	case KindPosts, KindPages:
		body := item.Rendered("content")
		c.Post = &PostFields{
			Title:        item.Rendered("title"),
			Content:      body,
			Excerpt:      item.Rendered("excerpt"),
			AuthorID:     item.Int("author"),
			DateCreated:  item.String("date"),
			DateModified: item.String("modified"),
			Status:       item.String("status"),
		}
		c.Fingerprint = Fingerprint(body)

	case KindComments:
		body := item.Rendered("content")
		c.Comment = &CommentFields{
			PostID:      item.Int("post"),
			ParentID:    item.Int("parent"),
			AuthorName:  item.String("author_name"),
			AuthorEmail: item.String("author_email"),
			AuthorURL:   item.String("author_url"),
			Content:     body,
			DateCreated: item.String("date"),
			Status:      item.String("status"),
		}
		c.Fingerprint = Fingerprint(body)

	case KindUsers:
		c.User = &UserFields{
			Name:        item.String("name"),
			URL:         item.String("url"),
			Description: item.String("description"),
			Link:        item.String("link"),
			Slug:        item.String("slug"),
			AvatarURLs:  item.JSON("avatar_urls"),
		}
		c.Fingerprint = Fingerprint(c.User.Name + c.User.Description + c.User.URL)

	case KindCategories, KindTags:
		c.Term = &TermFields{
			Name:        item.String("name"),
			Description: item.String("description"),
			Link:        item.String("link"),
			Slug:        item.String("slug"),
			Taxonomy:    item.String("taxonomy"),
			Parent:      item.Int("parent"),
			Count:       item.Int("count"),
		}
		c.Fingerprint = Fingerprint(c.Term.Name + c.Term.Description + c.Term.Slug)

	default:
		return nil, Errorf(EINVALID, "unknown content kind %q", kind)
	}

	return c, nil
}
