package store

import (
	"bitwise74/roleplay-api/internal/model"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TableFilter struct {
	// Only tables this user plays at. Zero means any.
	User uint
	// Case-insensitive substring of the name or description
	Text string
}

type PageMeta struct {
	Total       int64 `json:"total"`
	PerPage     int   `json:"per_page"`
	CurrentPage int   `json:"current_page"`
	FirstPage   int   `json:"first_page"`
	LastPage    int   `json:"last_page"`
}

type TablePage struct {
	Meta PageMeta      `json:"meta"`
	Data []model.Table `json:"data"`
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func withPlayer(userID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if userID == 0 {
			return db
		}

		return db.Where("EXISTS (SELECT 1 FROM tables_users tu WHERE tu.table_id = tables.id AND tu.user_id = ?)", userID)
	}
}

func withText(text string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if text == "" {
			return db
		}

		pattern := "%" + likeEscaper.Replace(strings.ToLower(text)) + "%"

		return db.Where(
			`(LOWER(tables.name) LIKE ? ESCAPE '\' OR LOWER(tables.description) LIKE ? ESCAPE '\')`,
			pattern, pattern,
		)
	}
}

// ListTables returns one page of tables matching f, ordered by ID, with
// players and masters filled in
func ListTables(db *gorm.DB, f TableFilter, page, limit int) (*TablePage, error) {
	query := func() *gorm.DB {
		return db.Model(&model.Table{}).Scopes(withPlayer(f.User), withText(f.Text))
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, err
	}

	tables := []model.Table{}

	err := query().
		Order("tables.id ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&tables).
		Error
	if err != nil {
		return nil, err
	}

	if err := HydrateTables(db, tables); err != nil {
		return nil, err
	}

	lastPage := int((total + int64(limit) - 1) / int64(limit))
	if lastPage < 1 {
		lastPage = 1
	}

	return &TablePage{
		Meta: PageMeta{
			Total:       total,
			PerPage:     limit,
			CurrentPage: page,
			FirstPage:   1,
			LastPage:    lastPage,
		},
		Data: tables,
	}, nil
}

type playerRow struct {
	TableID  uint
	ID       uint
	Username string
	Avatar   *string
}

// HydrateTables fills Players and MasterUser of every table in place
func HydrateTables(db *gorm.DB, tables []model.Table) error {
	if len(tables) == 0 {
		return nil
	}

	tableIDs := make([]uint, len(tables))
	masterIDs := make([]uint, 0, len(tables))

	for i, t := range tables {
		tableIDs[i] = t.ID
		masterIDs = append(masterIDs, t.Master)
	}

	var rows []playerRow

	err := db.Table("tables_users").
		Select("tables_users.table_id, users.id, users.username, users.avatar").
		Joins("JOIN users ON users.id = tables_users.user_id").
		Where("tables_users.table_id IN ?", tableIDs).
		Order("users.id ASC").
		Scan(&rows).
		Error
	if err != nil {
		return err
	}

	var masters []model.UserSummary

	err = db.Model(&model.User{}).
		Select("id, username, avatar").
		Where("id IN ?", masterIDs).
		Scan(&masters).
		Error
	if err != nil {
		return err
	}

	players := make(map[uint][]model.UserSummary, len(tables))
	for _, r := range rows {
		players[r.TableID] = append(players[r.TableID], model.UserSummary{
			ID:       r.ID,
			Username: r.Username,
			Avatar:   r.Avatar,
		})
	}

	byID := make(map[uint]model.UserSummary, len(masters))
	for _, m := range masters {
		byID[m.ID] = m
	}

	for i := range tables {
		tables[i].Players = players[tables[i].ID]
		if tables[i].Players == nil {
			tables[i].Players = []model.UserSummary{}
		}

		if m, ok := byID[tables[i].Master]; ok {
			tables[i].MasterUser = &m
		}
	}

	return nil
}

// HydrateTable is HydrateTables for a single table
func HydrateTable(db *gorm.DB, t *model.Table) error {
	tables := []model.Table{*t}
	if err := HydrateTables(db, tables); err != nil {
		return err
	}

	*t = tables[0]
	return nil
}

// CreateTable inserts t and makes its master the first player
func CreateTable(db *gorm.DB, t *model.Table) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(t).Error; err != nil {
			return err
		}

		return AttachPlayer(tx, t.Master, t.ID)
	})
}

// AttachPlayer adds a membership row. An existing row is left alone.
func AttachPlayer(db *gorm.DB, userID, tableID uint) error {
	return db.
		Clauses(clause.OnConflict{DoNothing: true}).
		Omit(clause.Associations).
		Create(&model.TablePlayer{UserID: userID, TableID: tableID}).
		Error
}

// DetachPlayer removes a membership row if there is one
func DetachPlayer(db *gorm.DB, userID, tableID uint) error {
	return db.
		Where("user_id = ? AND table_id = ?", userID, tableID).
		Delete(&model.TablePlayer{}).
		Error
}

func IsPlayer(db *gorm.DB, userID, tableID uint) (bool, error) {
	var count int64

	err := db.Model(&model.TablePlayer{}).
		Where("user_id = ? AND table_id = ?", userID, tableID).
		Count(&count).
		Error

	return count > 0, err
}

// UpdateTable writes fields to the table with the given ID and reloads t
func UpdateTable(db *gorm.DB, t *model.Table, fields map[string]any) error {
	if len(fields) > 0 {
		err := db.Model(&model.Table{}).
			Where("id = ?", t.ID).
			Updates(fields).
			Error
		if err != nil {
			return err
		}
	}

	return db.First(t, t.ID).Error
}

// DeleteTable removes the table together with its players and requests
func DeleteTable(db *gorm.DB, tableID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("table_id = ?", tableID).Delete(&model.TablePlayer{}).Error; err != nil {
			return err
		}

		if err := tx.Where("table_id = ?", tableID).Delete(&model.TableRequest{}).Error; err != nil {
			return err
		}

		return tx.Delete(&model.Table{}, tableID).Error
	})
}
