package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"prompteria-api/models"
)

// ErrNotFound is returned when the referenced record does not exist.
var ErrNotFound = errors.New("record not found")

// Conn hands out a live store connection. *database.Handle implements it.
type Conn interface {
	DB(ctx context.Context) (*gorm.DB, error)
}

// ListFilter narrows a prompt listing. Empty fields are ignored.
type ListFilter struct {
	CreatorID string
	LikedBy   string
	Tag       string
	Search    string
}

type PromptRepository struct {
	conn Conn
}

func NewPromptRepository(conn Conn) *PromptRepository {
	return &PromptRepository{conn: conn}
}

// ToggleLike flips the membership of userID in the prompt's liked-by set.
// The add-vs-remove decision is taken by the store: the set-remove runs first
// and only when it removed nothing is a set-add issued. The add absorbs a
// conflicting concurrent add from the same user, so the set never holds
// duplicates. It returns whether the user ends up liking the prompt and the
// canonical liker ids, oldest like first. A prompt deleted concurrently
// reports ErrNotFound and keeps no like rows.
func (r *PromptRepository) ToggleLike(ctx context.Context, promptID, userID string) (bool, []string, error) {
	db, err := r.conn.DB(ctx)
	if err != nil {
		return false, nil, err
	}

	if err := exists(db, promptID); err != nil {
		return false, nil, err
	}

	removed := db.Where("prompt_id = ? AND user_id = ?", promptID, userID).Delete(&models.PromptLike{})
	if removed.Error != nil {
		return false, nil, fmt.Errorf("remove like: %w", removed.Error)
	}

	liked := false
	if removed.RowsAffected == 0 {
		like := models.PromptLike{PromptID: promptID, UserID: userID}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&like).Error; err != nil {
			return false, nil, fmt.Errorf("add like: %w", err)
		}
		liked = true

		// A delete that committed after the first check leaves the new row
		// orphaned; take it back out.
		if err := exists(db, promptID); err != nil {
			if errors.Is(err, ErrNotFound) {
				db.Where("prompt_id = ?", promptID).Delete(&models.PromptLike{})
			}
			return false, nil, err
		}
	}

	likers, err := likerIDs(db, promptID)
	if err != nil {
		return false, nil, err
	}

	return liked, likers, nil
}

// IncrementViews adds one to the prompt's view counter and returns the new value.
func (r *PromptRepository) IncrementViews(ctx context.Context, promptID string) (int, error) {
	db, err := r.conn.DB(ctx)
	if err != nil {
		return 0, err
	}

	res := db.Model(&models.Prompt{}).Where("id = ?", promptID).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if res.Error != nil {
		return 0, fmt.Errorf("increment views: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, ErrNotFound
	}

	var prompt models.Prompt
	if err := db.Select("id", "views").First(&prompt, "id = ?", promptID).Error; err != nil {
		return 0, translate(err)
	}

	return prompt.Views, nil
}

// List returns one page of prompts matching filter, newest first, plus the
// total number of matches.
func (r *PromptRepository) List(ctx context.Context, filter ListFilter, offset, limit int) ([]models.Prompt, int64, error) {
	db, err := r.conn.DB(ctx)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := applyFilter(db.Model(&models.Prompt{}), filter).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count prompts: %w", err)
	}

	prompts := []models.Prompt{}
	if total == 0 {
		return prompts, 0, nil
	}

	// id breaks created_at ties so consecutive pages never overlap or skip.
	err = withAssociations(applyFilter(db.Model(&models.Prompt{}), filter)).
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&prompts).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list prompts: %w", err)
	}

	return prompts, total, nil
}

// Get loads a prompt with its creator, tags and likes.
func (r *PromptRepository) Get(ctx context.Context, promptID string) (*models.Prompt, error) {
	db, err := r.conn.DB(ctx)
	if err != nil {
		return nil, err
	}

	var prompt models.Prompt
	if err := withAssociations(db).First(&prompt, "id = ?", promptID).Error; err != nil {
		return nil, translate(err)
	}

	return &prompt, nil
}

// Create stores a new prompt together with its tags.
func (r *PromptRepository) Create(ctx context.Context, prompt *models.Prompt) error {
	db, err := r.conn.DB(ctx)
	if err != nil {
		return err
	}

	if err := db.Omit("Creator").Create(prompt).Error; err != nil {
		return fmt.Errorf("create prompt: %w", err)
	}

	return nil
}

// Update replaces the body and tags of a prompt. The creator is never touched.
func (r *PromptRepository) Update(ctx context.Context, promptID, body string, tags []string) error {
	db, err := r.conn.DB(ctx)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, promptID); err != nil {
			return err
		}

		if err := tx.Model(&models.Prompt{}).Where("id = ?", promptID).Update("prompt", body).Error; err != nil {
			return fmt.Errorf("update prompt: %w", err)
		}

		if err := tx.Where("prompt_id = ?", promptID).Delete(&models.PromptTag{}).Error; err != nil {
			return fmt.Errorf("clear tags: %w", err)
		}

		if len(tags) == 0 {
			return nil
		}
		rows := tagRows(promptID, tags)
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("insert tags: %w", err)
		}
		return nil
	})
}

// Delete removes a prompt along with its likes and tags.
func (r *PromptRepository) Delete(ctx context.Context, promptID string) error {
	db, err := r.conn.DB(ctx)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("prompt_id = ?", promptID).Delete(&models.PromptLike{}).Error; err != nil {
			return fmt.Errorf("delete likes: %w", err)
		}
		if err := tx.Where("prompt_id = ?", promptID).Delete(&models.PromptTag{}).Error; err != nil {
			return fmt.Errorf("delete tags: %w", err)
		}

		res := tx.Where("id = ?", promptID).Delete(&models.Prompt{})
		if res.Error != nil {
			return fmt.Errorf("delete prompt: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func exists(db *gorm.DB, promptID string) error {
	var count int64
	if err := db.Model(&models.Prompt{}).Where("id = ?", promptID).Count(&count).Error; err != nil {
		return fmt.Errorf("find prompt: %w", err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

func likerIDs(db *gorm.DB, promptID string) ([]string, error) {
	ids := []string{}
	err := db.Model(&models.PromptLike{}).
		Where("prompt_id = ?", promptID).
		Order("created_at ASC").
		Order("id ASC").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("load likes: %w", err)
	}
	return ids, nil
}

func withAssociations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Creator").
		Preload("Tags", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("position ASC")
		}).
		Preload("Likes", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("created_at ASC").Order("id ASC")
		})
}

func applyFilter(q *gorm.DB, filter ListFilter) *gorm.DB {
	sub := q.Session(&gorm.Session{NewDB: true})

	if filter.CreatorID != "" {
		q = q.Where("creator_id = ?", filter.CreatorID)
	}
	if filter.LikedBy != "" {
		q = q.Where("id IN (?)", sub.Model(&models.PromptLike{}).
			Select("prompt_id").
			Where("user_id = ?", filter.LikedBy))
	}
	if filter.Tag != "" {
		q = q.Where("id IN (?)", sub.Model(&models.PromptTag{}).
			Select("prompt_id").
			Where("LOWER(tag) = ?", strings.ToLower(filter.Tag)))
	}
	if filter.Search != "" {
		pattern := "%" + escapeLike(filter.Search) + "%"
		q = q.Where(
			"(prompt LIKE ? ESCAPE '!' OR id IN (?) OR creator_id IN (?))",
			pattern,
			sub.Model(&models.PromptTag{}).Select("prompt_id").Where("tag LIKE ? ESCAPE '!'", pattern),
			sub.Model(&models.User{}).Select("id").Where("name LIKE ? ESCAPE '!'", pattern),
		)
	}

	return q
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func tagRows(promptID string, tags []string) []models.PromptTag {
	rows := make([]models.PromptTag, 0, len(tags))
	for i, tag := range tags {
		rows = append(rows, models.PromptTag{PromptID: promptID, Position: i, Tag: tag})
	}
	return rows
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
