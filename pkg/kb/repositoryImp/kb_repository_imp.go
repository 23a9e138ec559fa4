package repositoryImp

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"policygen/entities"
	"policygen/pkg/kb/repository"
)

// insert in batches to stay under SQLite's bound-parameter limit
const insertBatch = 200

type repo struct{ db *gorm.DB }

func New(db *gorm.DB) repository.KBRepository { return &repo{db} }

func (r *repo) ReplaceAll(ctx context.Context, docs []entities.Document, info entities.StoreInfo) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&entities.Document{}).Error; err != nil {
			return fmt.Errorf("clear documents: %w", err)
		}
		if len(docs) > 0 {
			if err := tx.CreateInBatches(&docs, insertBatch).Error; err != nil {
				return fmt.Errorf("insert documents: %w", err)
			}
		}
		info.ID = 1
		info.DocumentCount = len(docs)
		if err := tx.Save(&info).Error; err != nil {
			return fmt.Errorf("save store info: %w", err)
		}
		return nil
	})
}

func (r *repo) Count(ctx context.Context) (int64, error) {
	var n int64
	return n, r.db.WithContext(ctx).Model(&entities.Document{}).Count(&n).Error
}

func (r *repo) Info(ctx context.Context) (*entities.StoreInfo, error) {
	var info entities.StoreInfo
	err := r.db.WithContext(ctx).First(&info, 1).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (r *repo) Query(ctx context.Context, vec entities.Vector, k int) ([]entities.Document, error) {
	if k <= 0 || len(vec) == 0 {
		return []entities.Document{}, nil
	}

	// score on ids and vectors only, then load the winners
	type candidate struct {
		ID        string
		Embedding entities.Vector
	}
	var cands []candidate
	if err := r.db.WithContext(ctx).Model(&entities.Document{}).
		Select("id", "embedding").
		Where("dimension = ?", len(vec)).
		Find(&cands).Error; err != nil {
		return nil, err
	}

	type scored struct {
		id string
		sc float64
	}
	list := make([]scored, 0, len(cands))
	for _, c := range cands {
		list = append(list, scored{id: c.ID, sc: vec.Cosine(c.Embedding)})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].sc != list[j].sc {
			return list[i].sc > list[j].sc
		}
		return list[i].id < list[j].id
	})
	if k > len(list) {
		k = len(list)
	}
	list = list[:k]
	if len(list) == 0 {
		return []entities.Document{}, nil
	}

	ids := make([]string, len(list))
	for i := range list {
		ids[i] = list[i].id
	}
	var rows []entities.Document
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	byID := make(map[string]entities.Document, len(rows))
	for _, d := range rows {
		byID[d.ID] = d
	}

	out := make([]entities.Document, 0, len(list))
	for _, s := range list {
		d, ok := byID[s.id]
		if !ok {
			continue
		}
		sc := s.sc
		d.Score = &sc
		out = append(out, d)
	}
	return out, nil
}

func (r *repo) Get(ctx context.Context, id string) (*entities.Document, error) {
	var d entities.Document
	if err := r.db.WithContext(ctx).First(&d, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *repo) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
