package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stylianoueleni/festival-engine/internal/domain"
	"github.com/stylianoueleni/festival-engine/internal/dto"
)

type fakeVisitorRepo struct {
	visitors map[string]*domain.Visitor
}

func newFakeVisitorRepo() *fakeVisitorRepo {
	return &fakeVisitorRepo{visitors: make(map[string]*domain.Visitor)}
}

func (r *fakeVisitorRepo) Create(ctx context.Context, visitor *domain.Visitor) error {
	r.visitors[visitor.ID] = visitor
	return nil
}

func (r *fakeVisitorRepo) GetByID(ctx context.Context, id string) (*domain.Visitor, error) {
	v, ok := r.visitors[id]
	if !ok {
		return nil, domain.ErrVisitorNotFound
	}
	return v, nil
}

func (r *fakeVisitorRepo) Update(ctx context.Context, visitor *domain.Visitor) error {
	if _, ok := r.visitors[visitor.ID]; !ok {
		return domain.ErrVisitorNotFound
	}
	r.visitors[visitor.ID] = visitor
	return nil
}

func birthdateForAge(years int) time.Time {
	return time.Now().AddDate(-years, 0, -1)
}

func TestRegisterVisitor(t *testing.T) {
	ctx := context.Background()

	t.Run("registers an adult visitor", func(t *testing.T) {
		repo := newFakeVisitorRepo()
		svc := NewVisitorService(repo)

		resp, err := svc.RegisterVisitor(ctx, &dto.RegisterVisitorRequest{
			FirstName: "Nina",
			LastName:  "Kova",
			Email:     "nina@example.com",
			Birthdate: birthdateForAge(30),
		})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.ID)
		assert.Len(t, repo.visitors, 1)
	})

	t.Run("rejects an underage visitor", func(t *testing.T) {
		repo := newFakeVisitorRepo()
		svc := NewVisitorService(repo)

		_, err := svc.RegisterVisitor(ctx, &dto.RegisterVisitorRequest{
			FirstName: "Kid",
			LastName:  "Kova",
			Email:     "kid@example.com",
			Birthdate: birthdateForAge(domain.MinVisitorAge - 1),
		})
		assert.ErrorIs(t, err, domain.ErrUnderageVisitor)
		assert.Empty(t, repo.visitors)
	})

	t.Run("accepts a visitor exactly at the minimum age", func(t *testing.T) {
		repo := newFakeVisitorRepo()
		svc := NewVisitorService(repo)

		_, err := svc.RegisterVisitor(ctx, &dto.RegisterVisitorRequest{
			FirstName: "Edge",
			LastName:  "Case",
			Email:     "edge@example.com",
			Birthdate: birthdateForAge(domain.MinVisitorAge),
		})
		assert.NoError(t, err)
	})
}

func TestUpdateVisitor(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*fakeVisitorRepo, VisitorService, string) {
		t.Helper()
		repo := newFakeVisitorRepo()
		svc := NewVisitorService(repo)
		resp, err := svc.RegisterVisitor(ctx, &dto.RegisterVisitorRequest{
			FirstName: "Nina",
			LastName:  "Kova",
			Email:     "nina@example.com",
			Birthdate: birthdateForAge(30),
		})
		require.NoError(t, err)
		return repo, svc, resp.ID
	}

	t.Run("updates visitor details", func(t *testing.T) {
		repo, svc, id := setup(t)

		resp, err := svc.UpdateVisitor(ctx, id, &dto.UpdateVisitorRequest{
			FirstName: "Nina",
			LastName:  "Kovachka",
			Email:     "nina@example.com",
			Birthdate: birthdateForAge(30),
		})
		require.NoError(t, err)
		assert.Equal(t, "Kovachka", resp.LastName)
		assert.Equal(t, "Kovachka", repo.visitors[id].LastName)
	})

	t.Run("rejects an update that makes the visitor underage", func(t *testing.T) {
		_, svc, id := setup(t)

		_, err := svc.UpdateVisitor(ctx, id, &dto.UpdateVisitorRequest{
			FirstName: "Nina",
			LastName:  "Kova",
			Email:     "nina@example.com",
			Birthdate: birthdateForAge(domain.MinVisitorAge - 1),
		})
		assert.ErrorIs(t, err, domain.ErrUnderageVisitor)
	})

	t.Run("unknown visitor", func(t *testing.T) {
		_, svc, _ := setup(t)

		_, err := svc.UpdateVisitor(ctx, "missing", &dto.UpdateVisitorRequest{
			FirstName: "Nina",
			LastName:  "Kova",
			Email:     "nina@example.com",
			Birthdate: birthdateForAge(30),
		})
		assert.ErrorIs(t, err, domain.ErrVisitorNotFound)
	})
}
