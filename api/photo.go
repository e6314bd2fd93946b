package api

import (
	"context"

	"github.com/rpupo63/portfolio-cms/media"
)

// photoUpdate carries an image change through an update. The new object is
// uploaded before the row is locked, the old one is removed only after the row
// commits, and a staged object whose row never committed is removed again.
type photoUpdate struct {
	store    *media.Store
	blob     *media.Blob
	remove   bool
	staged   string
	previous string
}

func newPhotoUpdate(store *media.Store, p *payload) *photoUpdate {
	return &photoUpdate{store: store, blob: p.photo, remove: p.flag(deletePhotoKey)}
}

func (u *photoUpdate) requested() bool {
	return u.blob != nil || u.remove
}

func (u *photoUpdate) stage(ctx context.Context, folder string) error {
	if u.blob == nil {
		return nil
	}
	url, err := u.store.Upload(ctx, *u.blob, folder)
	if err != nil {
		return err
	}
	u.staged = url
	return nil
}

// apply points photo at the staged object, or clears it, and reports whether it changed.
func (u *photoUpdate) apply(photo **string) bool {
	current := ""
	if *photo != nil {
		current = **photo
	}

	switch {
	case u.staged != "":
		u.previous = current
		staged := u.staged
		*photo = &staged
		return true
	case u.remove && current != "":
		u.previous = current
		*photo = nil
		return true
	}
	return false
}

func (u *photoUpdate) finish(ctx context.Context, committed bool) {
	if !committed {
		u.store.Destroy(ctx, u.staged)
		return
	}
	if u.previous != "" && u.previous != u.staged {
		u.store.Destroy(ctx, u.previous)
	}
}

// uploadPhoto stores the photo of a create payload; nil when none was sent.
func uploadPhoto(ctx context.Context, store *media.Store, p *payload, folder string) (*string, error) {
	if p.photo == nil {
		return nil, nil
	}
	url, err := store.Upload(ctx, *p.photo, folder)
	if err != nil || url == "" {
		return nil, err
	}
	return &url, nil
}

// assign copies v into dst when v was sent and differs
func assign(dst *string, v *string) bool {
	if v == nil || *dst == *v {
		return false
	}
	*dst = *v
	return true
}

func photoURL(photo *string) string {
	if photo == nil {
		return ""
	}
	return *photo
}
