package store

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"bitwise74/roleplay-api/internal/dbtest"
	"bitwise74/roleplay-api/internal/model"
	"bitwise74/roleplay-api/pkg/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newUser(t *testing.T, db *gorm.DB, name string) model.User {
	t.Helper()

	u := model.User{Email: name + "@example.com", Username: name, PasswordHash: "x"}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func newTable(t *testing.T, db *gorm.DB, master uint, name, description string) model.Table {
	t.Helper()

	table := model.Table{
		Name:        name,
		Description: description,
		Schedule:    "Fridays",
		Location:    "Discord",
		Chronic:     "Chronicle",
		Master:      master,
	}
	require.NoError(t, CreateTable(db, &table))
	return table
}

func TestCreateTableAttachesMaster(t *testing.T) {
	db := dbtest.New(t)
	m := newUser(t, db, "master")

	table := newTable(t, db, m.ID, "Vampire", "Night games")

	ok, err := IsPlayer(db, m.ID, table.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, HydrateTable(db, &table))
	require.Len(t, table.Players, 1)
	assert.Equal(t, m.ID, table.Players[0].ID)
	require.NotNil(t, table.MasterUser)
	assert.Equal(t, "master", table.MasterUser.Username)
}

func TestCreateTableRollsBackOnMissingMaster(t *testing.T) {
	db := dbtest.New(t)

	table := model.Table{Name: "n", Description: "d", Schedule: "s", Location: "l", Chronic: "c", Master: 999}
	require.Error(t, CreateTable(db, &table))

	var count int64
	require.NoError(t, db.Model(&model.Table{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAttachPlayerIsIdempotent(t *testing.T) {
	db := dbtest.New(t)
	m := newUser(t, db, "master")
	p := newUser(t, db, "player")
	table := newTable(t, db, m.ID, "t", "d")

	require.NoError(t, AttachPlayer(db, p.ID, table.ID))
	require.NoError(t, AttachPlayer(db, p.ID, table.ID))

	var count int64
	require.NoError(t, db.Model(&model.TablePlayer{}).Where("table_id = ?", table.ID).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	require.NoError(t, DetachPlayer(db, p.ID, table.ID))
	require.NoError(t, DetachPlayer(db, p.ID, table.ID))

	ok, err := IsPlayer(db, p.ID, table.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestListTablesFilters(t *testing.T) {
	db := dbtest.New(t)
	u1 := newUser(t, db, "u1")
	u2 := newUser(t, db, "u2")

	t1 := newTable(t, db, u1.ID, "Dragon Hunt", "A classic campaign")
	t2 := newTable(t, db, u2.ID, "Space", "Dragons in orbit")
	t3 := newTable(t, db, u2.ID, "100% fun", "percent_sign")
	require.NoError(t, AttachPlayer(db, u1.ID, t2.ID))

	ids := func(p *TablePage) []uint {
		out := make([]uint, len(p.Data))
		for i, t := range p.Data {
			out[i] = t.ID
		}
		return out
	}

	page, err := ListTables(db, TableFilter{User: u1.ID}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []uint{t1.ID, t2.ID}, ids(page))

	page, err = ListTables(db, TableFilter{User: u2.ID}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []uint{t2.ID, t3.ID}, ids(page))

	page, err = ListTables(db, TableFilter{Text: "DRAGON"}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []uint{t1.ID, t2.ID}, ids(page))

	page, err = ListTables(db, TableFilter{User: u2.ID, Text: "dragon"}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []uint{t2.ID}, ids(page))

	// wildcards are matched literally
	page, err = ListTables(db, TableFilter{Text: "%"}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []uint{t3.ID}, ids(page))

	page, err = ListTables(db, TableFilter{Text: "_"}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []uint{t3.ID}, ids(page))

	page, err = ListTables(db, TableFilter{Text: "nothing like this"}, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Data)
	assert.NotNil(t, page.Data)
	assert.Equal(t, 1, page.Meta.LastPage)
}

func TestListTablesPagination(t *testing.T) {
	db := dbtest.New(t)
	m := newUser(t, db, "m")

	for i := range 7 {
		newTable(t, db, m.ID, fmt.Sprintf("table %d", i), "d")
	}

	page, err := ListTables(db, TableFilter{}, 2, 5)
	require.NoError(t, err)

	assert.Len(t, page.Data, 2)
	assert.Equal(t, PageMeta{Total: 7, PerPage: 5, CurrentPage: 2, FirstPage: 1, LastPage: 2}, page.Meta)
	assert.Equal(t, "table 5", page.Data[0].Name)

	for _, table := range page.Data {
		require.Len(t, table.Players, 1)
		assert.Equal(t, m.ID, table.Players[0].ID)
		require.NotNil(t, table.MasterUser)
		assert.Equal(t, m.ID, table.MasterUser.ID)
	}
}

func TestUpdateTable(t *testing.T) {
	db := dbtest.New(t)
	m := newUser(t, db, "m")
	table := newTable(t, db, m.ID, "old", "d")

	require.NoError(t, UpdateTable(db, &table, map[string]any{"name": "new"}))
	assert.Equal(t, "new", table.Name)
	assert.Equal(t, "d", table.Description)

	require.NoError(t, UpdateTable(db, &table, nil))
	assert.Equal(t, "new", table.Name)
}

func TestDeleteTableRemovesPlayersAndRequests(t *testing.T) {
	db := dbtest.New(t)
	m := newUser(t, db, "m")
	p := newUser(t, db, "p")
	table := newTable(t, db, m.ID, "t", "d")

	_, err := CreateRequest(db, p.ID, table.ID)
	require.NoError(t, err)

	require.NoError(t, DeleteTable(db, table.ID))

	var players, requests, tables int64
	require.NoError(t, db.Model(&model.TablePlayer{}).Count(&players).Error)
	require.NoError(t, db.Model(&model.TableRequest{}).Count(&requests).Error)
	require.NoError(t, db.Model(&model.Table{}).Count(&tables).Error)

	assert.Zero(t, players)
	assert.Zero(t, requests)
	assert.Zero(t, tables)
}

func TestCascadeOnRawTableDelete(t *testing.T) {
	db := dbtest.New(t)
	m := newUser(t, db, "m")
	p := newUser(t, db, "p")
	table := newTable(t, db, m.ID, "t", "d")

	_, err := CreateRequest(db, p.ID, table.ID)
	require.NoError(t, err)

	require.NoError(t, db.Exec("DELETE FROM tables WHERE id = ?", table.ID).Error)

	var players, requests int64
	require.NoError(t, db.Model(&model.TablePlayer{}).Count(&players).Error)
	require.NoError(t, db.Model(&model.TableRequest{}).Count(&requests).Error)
	assert.Zero(t, players)
	assert.Zero(t, requests)
}

func TestCreateRequestDuplicate(t *testing.T) {
	db := dbtest.New(t)
	m := newUser(t, db, "m")
	p := newUser(t, db, "p")
	table := newTable(t, db, m.ID, "t", "d")

	r, err := CreateRequest(db, p.ID, table.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestPending, r.Status)

	ok, err := HasRequest(db, p.ID, table.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = CreateRequest(db, p.ID, table.ID)
	assert.True(t, IsDuplicate(err), "got %v", err)
}

func TestAcceptRequest(t *testing.T) {
	db := dbtest.New(t)
	m := newUser(t, db, "m")
	p := newUser(t, db, "p")
	table := newTable(t, db, m.ID, "t", "d")

	r, err := CreateRequest(db, p.ID, table.ID)
	require.NoError(t, err)

	found, err := FindRequest(db, table.ID, r.ID)
	require.NoError(t, err)

	require.NoError(t, AcceptRequest(db, found))
	assert.Equal(t, model.RequestAccepted, found.Status)

	var stored model.TableRequest
	require.NoError(t, db.First(&stored, r.ID).Error)
	assert.Equal(t, model.RequestAccepted, stored.Status)

	ok, err := IsPlayer(db, p.ID, table.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// a second accept loses the guarded update
	assert.ErrorIs(t, AcceptRequest(db, &stored), ErrRequestNotPending)
	assert.ErrorIs(t, RejectRequest(db, &stored), ErrRequestNotPending)
}

func TestAcceptRequestWithExistingMembership(t *testing.T) {
	db := dbtest.New(t)
	m := newUser(t, db, "m")
	p := newUser(t, db, "p")
	table := newTable(t, db, m.ID, "t", "d")

	r, err := CreateRequest(db, p.ID, table.ID)
	require.NoError(t, err)
	require.NoError(t, AttachPlayer(db, p.ID, table.ID))

	require.NoError(t, AcceptRequest(db, r))
}

func TestRejectRequest(t *testing.T) {
	db := dbtest.New(t)
	m := newUser(t, db, "m")
	p := newUser(t, db, "p")
	table := newTable(t, db, m.ID, "t", "d")

	r, err := CreateRequest(db, p.ID, table.ID)
	require.NoError(t, err)

	require.NoError(t, RejectRequest(db, r))

	_, err = FindRequest(db, table.ID, r.ID)
	assert.True(t, IsNotFound(err))

	ok, err := IsPlayer(db, p.ID, table.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFindRequestChecksTable(t *testing.T) {
	db := dbtest.New(t)
	m := newUser(t, db, "m")
	p := newUser(t, db, "p")
	t1 := newTable(t, db, m.ID, "t1", "d")
	t2 := newTable(t, db, m.ID, "t2", "d")

	r, err := CreateRequest(db, p.ID, t1.ID)
	require.NoError(t, err)

	_, err = FindRequest(db, t2.ID, r.ID)
	assert.True(t, IsNotFound(err))
}

func TestPendingForMaster(t *testing.T) {
	db := dbtest.New(t)
	m1 := newUser(t, db, "m1")
	m2 := newUser(t, db, "m2")
	p1 := newUser(t, db, "p1")
	p2 := newUser(t, db, "p2")

	t1 := newTable(t, db, m1.ID, "first", "d")
	t2 := newTable(t, db, m2.ID, "second", "d")

	pending, err := CreateRequest(db, p1.ID, t1.ID)
	require.NoError(t, err)

	accepted, err := CreateRequest(db, p2.ID, t1.ID)
	require.NoError(t, err)
	require.NoError(t, AcceptRequest(db, accepted))

	_, err = CreateRequest(db, p1.ID, t2.ID)
	require.NoError(t, err)

	views, err := PendingForMaster(db, m1.ID)
	require.NoError(t, err)

	require.Len(t, views, 1)
	assert.Equal(t, model.TableRequestView{
		ID:      pending.ID,
		TableID: t1.ID,
		UserID:  p1.ID,
		Status:  model.RequestPending,
		Table:   model.TableSummary{ID: t1.ID, Name: "first", Master: m1.ID},
		User:    model.UserSummary{ID: p1.ID, Username: "p1"},
	}, views[0])

	views, err = PendingForMaster(db, p1.ID)
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestIssueResetToken(t *testing.T) {
	db := dbtest.New(t)
	u := newUser(t, db, "u")

	var first *model.PasswordResetToken
	require.NoError(t, IssueResetToken(db, u.ID, func(tok *model.PasswordResetToken) error {
		first = tok
		return nil
	}))

	var second *model.PasswordResetToken
	require.NoError(t, IssueResetToken(db, u.ID, func(tok *model.PasswordResetToken) error {
		second = tok
		return nil
	}))

	_, err := FindResetToken(db, first.Token)
	assert.True(t, IsNotFound(err), "previous tokens are replaced")

	found, err := FindResetToken(db, second.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.UserID)
}

func TestIssueResetTokenRollsBackOnDeliveryFailure(t *testing.T) {
	db := dbtest.New(t)
	u := newUser(t, db, "u")

	require.NoError(t, IssueResetToken(db, u.ID, func(*model.PasswordResetToken) error { return nil }))

	boom := errors.New("smtp down")
	err := IssueResetToken(db, u.ID, func(*model.PasswordResetToken) error { return boom })
	assert.ErrorIs(t, err, boom)

	// the old token survives the failed attempt
	var count int64
	require.NoError(t, db.Model(&model.PasswordResetToken{}).Where("user_id = ?", u.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestConsumeResetToken(t *testing.T) {
	db := dbtest.New(t)
	u := newUser(t, db, "u")

	var tok *model.PasswordResetToken
	require.NoError(t, IssueResetToken(db, u.ID, func(issued *model.PasswordResetToken) error {
		tok = issued
		return nil
	}))

	require.NoError(t, ConsumeResetToken(db, tok, "new-hash"))

	var stored model.User
	require.NoError(t, db.First(&stored, u.ID).Error)
	assert.Equal(t, "new-hash", stored.PasswordHash)

	_, err := FindResetToken(db, tok.Token)
	assert.True(t, IsNotFound(err))

	err = ConsumeResetToken(db, tok, "other-hash")
	assert.True(t, IsNotFound(err))

	require.NoError(t, db.First(&stored, u.ID).Error)
	assert.Equal(t, "new-hash", stored.PasswordHash)
}

func TestSessions(t *testing.T) {
	db := dbtest.New(t)
	u := newUser(t, db, "u")

	issuer := security.NewSessionIssuer("secret", 2*time.Hour)
	s, err := issuer.Issue(u.ID)
	require.NoError(t, err)

	row, err := CreateSession(db, u.ID, s)
	require.NoError(t, err)
	assert.Equal(t, SessionTokenType, row.Type)
	assert.Equal(t, s.Hash, row.TokenHash)

	_, err = CreateSession(db, u.ID, s)
	assert.True(t, IsDuplicate(err))

	n, err := PurgeExpiredSessions(db, time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = PurgeExpiredSessions(db, time.Now().Add(3*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, DeleteSession(db, row.ID))
}

func TestPurgeExpiredSessionsIgnoresZone(t *testing.T) {
	db := dbtest.New(t)
	u := newUser(t, db, "u")

	issuer := security.NewSessionIssuer("secret", time.Hour)
	s, err := issuer.Issue(u.ID)
	require.NoError(t, err)

	_, err = CreateSession(db, u.ID, s)
	require.NoError(t, err)

	// same instant, wall clock 14 hours ahead of the stored value
	ahead := time.Now().In(time.FixedZone("UTC+14", 14*60*60))

	n, err := PurgeExpiredSessions(db, ahead)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = PurgeExpiredSessions(db, ahead.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestPurgeResetTokens(t *testing.T) {
	db := dbtest.New(t)
	u := newUser(t, db, "u")

	require.NoError(t, db.Omit("User").Create(&model.PasswordResetToken{
		UserID:    u.ID,
		Token:     "old",
		CreatedAt: time.Now().Add(-48 * time.Hour),
	}).Error)

	n, err := PurgeResetTokens(db, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
