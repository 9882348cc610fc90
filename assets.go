package voxscene

import (
	"sync"

	"github.com/google/uuid"
)

// AssetId identifies a registered scene or model.
type AssetId string

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}

// AssetServer is an in-memory registry for hosts that keep converted scenes
// around, look models up by id, and remesh them after edits. Purely optional:
// LoadScene can be used directly when the host has its own asset tracking.
type AssetServer struct {
	mu     sync.RWMutex
	scenes map[AssetId]*Scene
	models map[AssetId]*VoxelModel
}

func NewAssetServer() *AssetServer {
	return &AssetServer{
		scenes: make(map[AssetId]*Scene),
		models: make(map[AssetId]*VoxelModel),
	}
}

// LoadScene converts a buffer and registers the result. Every model in the
// scene gets its own id, returned in model order.
func (s *AssetServer) LoadScene(data []byte, cfg LoadConfig) (AssetId, []AssetId, error) {
	scene, err := LoadScene(data, cfg)
	if err != nil {
		return "", nil, err
	}
	sceneID := s.AddScene(scene)
	modelIDs := make([]AssetId, len(scene.Models))
	s.mu.Lock()
	for i, m := range scene.Models {
		id := makeAssetId()
		s.models[id] = m
		modelIDs[i] = id
	}
	s.mu.Unlock()
	return sceneID, modelIDs, nil
}

// AddScene registers an already-converted scene.
func (s *AssetServer) AddScene(scene *Scene) AssetId {
	id := makeAssetId()
	s.mu.Lock()
	s.scenes[id] = scene
	s.mu.Unlock()
	return id
}

// AddModel registers a standalone model, e.g. one built via MeshGrid.
func (s *AssetServer) AddModel(m *VoxelModel) AssetId {
	id := makeAssetId()
	s.mu.Lock()
	s.models[id] = m
	s.mu.Unlock()
	return id
}

// Scene returns a registered scene, or nil.
func (s *AssetServer) Scene(id AssetId) *Scene {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scenes[id]
}

// Model returns a registered model, or nil.
func (s *AssetServer) Model(id AssetId) *VoxelModel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.models[id]
}

// Remove drops a scene or model from the registry.
func (s *AssetServer) Remove(id AssetId) {
	s.mu.Lock()
	delete(s.scenes, id)
	delete(s.models, id)
	s.mu.Unlock()
}
