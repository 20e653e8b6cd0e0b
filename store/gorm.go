package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/CUknot/fairmind/models"
	"gorm.io/gorm"
)

// NewGorm returns a Store backed by db. The connection should be opened with
// TranslateError enabled so unique violations surface as ErrDuplicate.
func NewGorm(db *gorm.DB) *Store {
	if db == nil {
		panic("database connection cannot be nil")
	}
	return &Store{
		Users:       &gormUsers{db: db},
		Rooms:       &gormRooms{db: db},
		Messages:    &gormMessages{db: db},
		Resolutions: &gormResolutions{db: db},
		Votes:       &gormVotes{db: db},
	}
}

func translate(err error, format string, args ...any) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return fmt.Errorf("gorm: "+format+": %w", append(args, err)...)
	}
}

type gormUsers struct{ db *gorm.DB }

func (r *gormUsers) Create(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error, "create user %s", user.Email)
}

func (r *gormUsers) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err, "find user %d", id)
	}
	return &user, nil
}

func (r *gormUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err, "find user by email %s", email)
	}
	return &user, nil
}

type gormRooms struct{ db *gorm.DB }

func (r *gormRooms) Create(ctx context.Context, room *models.Room) error {
	return translate(r.db.WithContext(ctx).Create(room).Error, "create room %s", room.Code)
}

func (r *gormRooms) FindByID(ctx context.Context, id string) (*models.Room, error) {
	var room models.Room
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&room).Error; err != nil {
		return nil, translate(err, "find room %s", id)
	}
	return &room, nil
}

func (r *gormRooms) FindByCode(ctx context.Context, code string) (*models.Room, error) {
	var room models.Room
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&room).Error; err != nil {
		return nil, translate(err, "find room by code %s", code)
	}
	return &room, nil
}

func (r *gormRooms) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Room{}).Where("code = ?", code).Count(&count).Error; err != nil {
		return false, translate(err, "check room code %s", code)
	}
	return count > 0, nil
}

func (r *gormRooms) Update(ctx context.Context, room *models.Room) error {
	return translate(r.db.WithContext(ctx).Save(room).Error, "update room %s", room.ID)
}

func (r *gormRooms) ListForUser(ctx context.Context, userID uint) ([]models.Room, error) {
	var rooms []models.Room
	err := r.db.WithContext(ctx).
		Where("created_by = ? OR participant1 = ? OR participant2 = ?", userID, userID, userID).
		Order("created_at DESC").
		Find(&rooms).Error
	if err != nil {
		return nil, translate(err, "list rooms for user %d", userID)
	}
	return rooms, nil
}

func (r *gormRooms) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("room_id = ?", id).Delete(&models.Vote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("room_id = ?", id).Delete(&models.Resolution{}).Error; err != nil {
			return err
		}
		if err := tx.Where("room_id = ?", id).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.Room{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return translate(err, "delete room %s", id)
}

type gormMessages struct{ db *gorm.DB }

func (r *gormMessages) Create(ctx context.Context, message *models.Message) error {
	return translate(r.db.WithContext(ctx).Create(message).Error, "create message in room %s", message.RoomID)
}

func (r *gormMessages) ListByRoom(ctx context.Context, roomID string) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, translate(err, "list messages for room %s", roomID)
	}
	return messages, nil
}

func (r *gormMessages) CountBySender(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Message{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, translate(err, "count messages for user %d", userID)
	}
	return count, nil
}

type gormResolutions struct{ db *gorm.DB }

func (r *gormResolutions) CreateBatch(ctx context.Context, roomID string, resolutions []models.Resolution) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var latest int
		if err := tx.Model(&models.Resolution{}).
			Where("room_id = ?", roomID).
			Select("COALESCE(MAX(batch), 0)").
			Scan(&latest).Error; err != nil {
			return err
		}
		for i := range resolutions {
			resolutions[i].RoomID = roomID
			resolutions[i].Batch = latest + 1
		}
		return tx.Create(&resolutions).Error
	})
	return translate(err, "create resolutions for room %s", roomID)
}

func (r *gormResolutions) FindByID(ctx context.Context, id uint) (*models.Resolution, error) {
	var resolution models.Resolution
	if err := r.db.WithContext(ctx).First(&resolution, id).Error; err != nil {
		return nil, translate(err, "find resolution %d", id)
	}
	return &resolution, nil
}

func (r *gormResolutions) ListByRoom(ctx context.Context, roomID string) ([]models.Resolution, error) {
	var resolutions []models.Resolution
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("batch ASC, id ASC").
		Find(&resolutions).Error
	if err != nil {
		return nil, translate(err, "list resolutions for room %s", roomID)
	}
	return resolutions, nil
}

type gormVotes struct{ db *gorm.DB }

func (r *gormVotes) Create(ctx context.Context, vote *models.Vote) error {
	return translate(r.db.WithContext(ctx).Create(vote).Error, "create vote in room %s", vote.RoomID)
}

func (r *gormVotes) FindByRoomAndUser(ctx context.Context, roomID string, userID uint) (*models.Vote, error) {
	var vote models.Vote
	if err := r.db.WithContext(ctx).Where("room_id = ? AND user_id = ?", roomID, userID).First(&vote).Error; err != nil {
		return nil, translate(err, "find vote of user %d in room %s", userID, roomID)
	}
	return &vote, nil
}

func (r *gormVotes) ListByRoom(ctx context.Context, roomID string) ([]models.Vote, error) {
	var votes []models.Vote
	if err := r.db.WithContext(ctx).Where("room_id = ?", roomID).Order("id ASC").Find(&votes).Error; err != nil {
		return nil, translate(err, "list votes for room %s", roomID)
	}
	return votes, nil
}

func (r *gormVotes) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Vote{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, translate(err, "count votes for user %d", userID)
	}
	return count, nil
}
