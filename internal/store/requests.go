package store

import (
	"bitwise74/roleplay-api/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FindRequest looks up a request by its ID, scoped to the table it was made
// for
func FindRequest(db *gorm.DB, tableID, requestID uint) (*model.TableRequest, error) {
	var r model.TableRequest

	err := db.Where("id = ? AND table_id = ?", requestID, tableID).First(&r).Error
	if err != nil {
		return nil, err
	}

	return &r, nil
}

func HasRequest(db *gorm.DB, userID, tableID uint) (bool, error) {
	var count int64

	err := db.Model(&model.TableRequest{}).
		Where("user_id = ? AND table_id = ?", userID, tableID).
		Count(&count).
		Error

	return count > 0, err
}

// CreateRequest inserts a PENDING request. A second request for the same
// pair fails with gorm.ErrDuplicatedKey.
func CreateRequest(db *gorm.DB, userID, tableID uint) (*model.TableRequest, error) {
	r := &model.TableRequest{
		UserID:  userID,
		TableID: tableID,
		Status:  model.RequestPending,
	}

	if err := db.Omit(clause.Associations).Create(r).Error; err != nil {
		return nil, err
	}

	return r, nil
}

// AcceptRequest moves r from PENDING to ACCEPTED and adds its user to the
// table. Only one of several concurrent accepts can win the status update,
// the rest get ErrRequestNotPending.
func AcceptRequest(db *gorm.DB, r *model.TableRequest) error {
	now := time.Now()

	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.TableRequest{}).
			Where("id = ? AND status = ?", r.ID, model.RequestPending).
			Updates(map[string]any{
				"status":     model.RequestAccepted,
				"updated_at": now,
			})
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			return ErrRequestNotPending
		}

		return AttachPlayer(tx, r.UserID, r.TableID)
	})
	if err != nil {
		return err
	}

	r.Status = model.RequestAccepted
	r.UpdatedAt = now
	return nil
}

// RejectRequest deletes a PENDING request. Membership is not touched.
func RejectRequest(db *gorm.DB, r *model.TableRequest) error {
	res := db.
		Where("id = ? AND status = ?", r.ID, model.RequestPending).
		Delete(&model.TableRequest{})
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return ErrRequestNotPending
	}

	return nil
}

type requestRow struct {
	ID          uint
	TableID     uint
	UserID      uint
	Status      string
	TableName   string
	TableMaster uint
	Username    string
}

// PendingForMaster lists every PENDING request on tables owned by master,
// oldest first
func PendingForMaster(db *gorm.DB, master uint) ([]model.TableRequestView, error) {
	var rows []requestRow

	err := db.Table("tables_requests").
		Select(`tables_requests.id, tables_requests.table_id, tables_requests.user_id, tables_requests.status,
			tables.name AS table_name, tables.master AS table_master, users.username`).
		Joins("JOIN tables ON tables.id = tables_requests.table_id").
		Joins("JOIN users ON users.id = tables_requests.user_id").
		Where("tables.master = ? AND tables_requests.status = ?", master, model.RequestPending).
		Order("tables_requests.id ASC").
		Scan(&rows).
		Error
	if err != nil {
		return nil, err
	}

	views := make([]model.TableRequestView, len(rows))
	for i, r := range rows {
		views[i] = model.TableRequestView{
			ID:      r.ID,
			TableID: r.TableID,
			UserID:  r.UserID,
			Status:  r.Status,
			Table: model.TableSummary{
				ID:     r.TableID,
				Name:   r.TableName,
				Master: r.TableMaster,
			},
			User: model.UserSummary{
				ID:       r.UserID,
				Username: r.Username,
			},
		}
	}

	return views, nil
}
