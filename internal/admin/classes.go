// Package admin implements the administrator's class and session editors.
// Panels keep a local copy of the list and patch it after each successful
// call instead of re-fetching.
package admin

import (
	"context"
	"errors"
	"sync"

	"github.com/vslbak/gymflow-web/internal/api"
	"github.com/vslbak/gymflow-web/internal/client"
	"github.com/vslbak/gymflow-web/internal/duration"
	"github.com/vslbak/gymflow-web/internal/logger"
)

// RedirectPath is where non-admins are sent.
const RedirectPath = "/"

var (
	ErrForbidden        = errors.New("admin access required")
	ErrClassNotFound    = errors.New("Class not found")
	ErrSessionNotFound  = errors.New("Class session not found")
	ErrNoPendingDelete  = errors.New("no delete awaiting confirmation")
	ErrOverCapacity     = errors.New("spots left exceeds class capacity")
	ErrIncompleteResult = errors.New("backend returned no data")
)

// ActionError carries the backend's message for a failed admin call.
type ActionError struct {
	Op      string
	Message string
}

func (e *ActionError) Error() string {
	return e.Op + ": " + e.Message
}

// Gate reports whether the current user may use the admin panels.
type Gate interface {
	IsAdmin() bool
}

type ClassAPI interface {
	ListClasses(ctx context.Context) client.Result[[]api.GymClass]
	CreateClass(ctx context.Context, req api.CreateClassRequest) client.Result[api.GymClass]
	UpdateClass(ctx context.Context, req api.UpdateClassRequest) client.Result[api.GymClass]
	DeleteClass(ctx context.Context, id string) client.Result[struct{}]
}

// CatalogSync receives class edits so that cached catalogs stay current.
type CatalogSync interface {
	Upsert(class api.GymClass)
	Remove(id string)
}

type ClassPanel struct {
	api      ClassAPI
	sessions *SessionPanel
	catalog  CatalogSync

	mu            sync.RWMutex
	classes       []api.GymClass
	pendingDelete string
}

func NewClassPanel(gate Gate, classAPI ClassAPI) (*ClassPanel, error) {
	if gate == nil || !gate.IsAdmin() {
		return nil, ErrForbidden
	}
	return &ClassPanel{api: classAPI}, nil
}

// LinkSessions makes class deletion drop the class's sessions from sp.
func (p *ClassPanel) LinkSessions(sp *SessionPanel) {
	p.sessions = sp
}

func (p *ClassPanel) SyncCatalog(c CatalogSync) {
	p.catalog = c
}

func (p *ClassPanel) Load(ctx context.Context) error {
	res := p.api.ListClasses(ctx)
	if !res.Success {
		return &ActionError{Op: "load classes", Message: res.Error}
	}
	p.mu.Lock()
	p.classes = res.Data
	p.mu.Unlock()
	return nil
}

func (p *ClassPanel) Classes() []api.GymClass {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]api.GymClass(nil), p.classes...)
}

func (p *ClassPanel) find(id string) (api.GymClass, int) {
	for i, c := range p.classes {
		if c.ID == id {
			return c, i
		}
	}
	return api.GymClass{}, -1
}

// NewForm returns a blank form with the editor's defaults.
func (p *ClassPanel) NewForm() ClassForm {
	return ClassForm{
		DurationMinutes: duration.DefaultMinutes,
		TotalSpots:      DefaultTotalSpots,
		ImageURL:        DefaultImageURL,
		Category:        DefaultCategory,
		Level:           DefaultLevel,
		Location:        DefaultLocation,
		Price:           DefaultPrice,
		ClassTime:       DefaultClassTime,
		DaysOfWeek:      []string{},
		WhatToBring:     []string{},
	}
}

func (p *ClassPanel) EditForm(id string) (ClassForm, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	c, i := p.find(id)
	if i < 0 {
		return ClassForm{}, ErrClassNotFound
	}
	return classFormFrom(c), nil
}

func (p *ClassPanel) Create(ctx context.Context, form ClassForm) (api.GymClass, error) {
	if err := validateForm(form); err != nil {
		return api.GymClass{}, err
	}
	res := p.api.CreateClass(ctx, form.createRequest())
	if !res.Success {
		return api.GymClass{}, &ActionError{Op: "create class", Message: res.Error}
	}
	if res.Data.ID == "" {
		return api.GymClass{}, ErrIncompleteResult
	}

	p.mu.Lock()
	p.classes = append(p.classes, res.Data)
	p.mu.Unlock()
	if p.catalog != nil {
		p.catalog.Upsert(res.Data)
	}
	logger.Info("class created", "class_id", res.Data.ID, "name", res.Data.Name)
	return res.Data, nil
}

func (p *ClassPanel) Update(ctx context.Context, form ClassForm) (api.GymClass, error) {
	if form.ID == "" {
		return api.GymClass{}, ErrClassNotFound
	}
	if err := validateForm(form); err != nil {
		return api.GymClass{}, err
	}
	res := p.api.UpdateClass(ctx, api.UpdateClassRequest{ID: form.ID, CreateClassRequest: form.createRequest()})
	if !res.Success {
		return api.GymClass{}, &ActionError{Op: "update class", Message: res.Error}
	}
	updated := res.Data
	if updated.ID == "" {
		updated.ID = form.ID
	}

	p.mu.Lock()
	if _, i := p.find(updated.ID); i >= 0 {
		p.classes[i] = updated
	}
	p.mu.Unlock()
	if p.catalog != nil {
		p.catalog.Upsert(updated)
	}
	logger.Info("class updated", "class_id", updated.ID)
	return updated, nil
}

// RequestDelete marks a class for deletion; ConfirmDelete performs it.
func (p *ClassPanel) RequestDelete(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, i := p.find(id); i < 0 {
		return ErrClassNotFound
	}
	p.pendingDelete = id
	return nil
}

func (p *ClassPanel) PendingDelete() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.pendingDelete
}

func (p *ClassPanel) CancelDelete() {
	p.mu.Lock()
	p.pendingDelete = ""
	p.mu.Unlock()
}

// ConfirmDelete deletes the class awaiting confirmation and drops its
// sessions from the linked session panel.
func (p *ClassPanel) ConfirmDelete(ctx context.Context) error {
	p.mu.Lock()
	id := p.pendingDelete
	p.pendingDelete = ""
	p.mu.Unlock()
	if id == "" {
		return ErrNoPendingDelete
	}

	res := p.api.DeleteClass(ctx, id)
	if !res.Success {
		return &ActionError{Op: "delete class", Message: res.Error}
	}

	p.mu.Lock()
	if _, i := p.find(id); i >= 0 {
		p.classes = append(p.classes[:i:i], p.classes[i+1:]...)
	}
	p.mu.Unlock()

	removed := 0
	if p.sessions != nil {
		removed = p.sessions.RemoveByClass(id)
	}
	if p.catalog != nil {
		p.catalog.Remove(id)
	}
	logger.Info("class deleted", "class_id", id, "sessions_removed", removed)
	return nil
}
