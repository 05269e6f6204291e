package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"securecollab/internal/domain"
)

func newPermissionEnv(t *testing.T) (*PermissionService, *memStore, *domain.File) {
	t.Helper()

	store := newMemStore()
	svc := NewPermissionService(grantStore{store}, store)

	file := &domain.File{
		Name:       "report.pdf",
		StorageKey: "user_1/blob",
		SizeBytes:  100,
		MIMEType:   "application/pdf",
		OwnerID:    1,
	}
	require.NoError(t, store.Create(context.Background(), file))

	return svc, store, file
}

func TestGrant_OwnerCannotBeGrantee(t *testing.T) {
	svc, _, file := newPermissionEnv(t)
	ctx := context.Background()

	_, err := svc.Grant(ctx, file.ID, file.OwnerID, domain.PermissionRead)
	assert.ErrorIs(t, err, domain.ErrInvalidGrant)

	_, err = svc.Grant(ctx, file.ID, file.OwnerID, domain.PermissionWrite)
	assert.ErrorIs(t, err, domain.ErrInvalidGrant)
}

func TestGrant_InvalidPermission(t *testing.T) {
	svc, _, file := newPermissionEnv(t)

	_, err := svc.Grant(context.Background(), file.ID, 2, domain.Permission("admin"))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestGrant_UnknownFile(t *testing.T) {
	svc, _, _ := newPermissionEnv(t)

	_, err := svc.Grant(context.Background(), 999, 2, domain.PermissionRead)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCheck_PermissionMonotonicity(t *testing.T) {
	svc, _, file := newPermissionEnv(t)
	ctx := context.Background()
	granteeID := int64(2)

	// до выдачи гранта доступа нет
	ok, err := svc.Check(ctx, file.ID, granteeID, domain.PermissionRead)
	require.NoError(t, err)
	assert.False(t, ok)

	// read дает read, но не write
	_, err = svc.Grant(ctx, file.ID, granteeID, domain.PermissionRead)
	require.NoError(t, err)

	ok, err = svc.Check(ctx, file.ID, granteeID, domain.PermissionRead)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Check(ctx, file.ID, granteeID, domain.PermissionWrite)
	require.NoError(t, err)
	assert.False(t, ok)

	// после повышения до write доступны обе операции
	_, err = svc.Grant(ctx, file.ID, granteeID, domain.PermissionWrite)
	require.NoError(t, err)

	ok, err = svc.Check(ctx, file.ID, granteeID, domain.PermissionRead)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Check(ctx, file.ID, granteeID, domain.PermissionWrite)
	require.NoError(t, err)
	assert.True(t, ok)

	// повторная выдача обновила грант, а не продублировала
	grants, err := svc.ListGrants(ctx, file.ID)
	require.NoError(t, err)
	require.Len(t, grants, 1)
	assert.Equal(t, domain.PermissionWrite, grants[0].Permission)
}

func TestCheck_OwnerAlwaysAllowed(t *testing.T) {
	svc, _, file := newPermissionEnv(t)
	ctx := context.Background()

	ok, err := svc.Check(ctx, file.ID, file.OwnerID, domain.PermissionRead)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Check(ctx, file.ID, file.OwnerID, domain.PermissionWrite)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRevoke(t *testing.T) {
	svc, _, file := newPermissionEnv(t)
	ctx := context.Background()
	granteeID := int64(2)

	// отзыв несуществующего гранта
	err := svc.Revoke(ctx, file.ID, granteeID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// доступ владельца не отзывается
	err = svc.Revoke(ctx, file.ID, file.OwnerID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.Grant(ctx, file.ID, granteeID, domain.PermissionRead)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, file.ID, granteeID))

	ok, err := svc.Check(ctx, file.ID, granteeID, domain.PermissionRead)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestListGrants_OrderedByCreation(t *testing.T) {
	svc, _, file := newPermissionEnv(t)
	ctx := context.Background()

	for _, granteeID := range []int64{5, 3, 7} {
		_, err := svc.Grant(ctx, file.ID, granteeID, domain.PermissionRead)
		require.NoError(t, err)
	}

	grants, err := svc.ListGrants(ctx, file.ID)
	require.NoError(t, err)
	require.Len(t, grants, 3)
	assert.Equal(t, int64(5), grants[0].UserID)
	assert.Equal(t, int64(3), grants[1].UserID)
	assert.Equal(t, int64(7), grants[2].UserID)
}

func TestCanManageGrants(t *testing.T) {
	svc, _, file := newPermissionEnv(t)
	ctx := context.Background()

	ok, err := svc.CanManageGrants(ctx, file.ID, file.OwnerID)
	require.NoError(t, err)
	assert.True(t, ok)

	// read-грант не дает права делиться
	_, err = svc.Grant(ctx, file.ID, 2, domain.PermissionRead)
	require.NoError(t, err)

	ok, err = svc.CanManageGrants(ctx, file.ID, 2)
	require.NoError(t, err)
	assert.False(t, ok)

	// write-грант дает
	_, err = svc.Grant(ctx, file.ID, 2, domain.PermissionWrite)
	require.NoError(t, err)

	ok, err = svc.CanManageGrants(ctx, file.ID, 2)
	require.NoError(t, err)
	assert.True(t, ok)
}
