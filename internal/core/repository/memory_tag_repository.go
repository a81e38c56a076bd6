package repository

import (
	"sort"
	"sync"

	"tagsense/internal/core/model"
)

// inMemoryTagRepository backs the registry when no MongoDB is configured.
type inMemoryTagRepository struct {
	tags  map[uint32]*model.Tag
	mutex sync.RWMutex
}

func NewInMemoryTagRepository() TagRepository {
	return &inMemoryTagRepository{
		tags: make(map[uint32]*model.Tag),
	}
}

func (r *inMemoryTagRepository) Upsert(tag *model.Tag) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if existing, ok := r.tags[tag.TagID]; ok {
		existing.Battery = tag.Battery
		existing.MapID = tag.MapID
		existing.Floor = tag.Floor
		existing.Sleep = tag.Sleep
		existing.Charging = tag.Charging
		existing.LastSeen = tag.LastSeen
		return nil
	}

	copied := *tag
	r.tags[tag.TagID] = &copied
	return nil
}

func (r *inMemoryTagRepository) FindByTagID(tagID uint32) (*model.Tag, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if tag, exists := r.tags[tagID]; exists {
		copied := *tag
		return &copied, nil
	}
	return nil, nil
}

func (r *inMemoryTagRepository) FindAll() ([]*model.Tag, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make([]*model.Tag, 0, len(r.tags))
	for _, tag := range r.tags {
		copied := *tag
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].TagID < result[j].TagID })
	return result, nil
}
