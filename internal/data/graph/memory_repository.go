package graph

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// MemoryRepository is an in-process implementation of Repository backed by
// plain maps, guarded by a single mutex. It backs the unit tests, and the
// server and CLI fall back to it when NEO4J_URI is not set; its contents
// live only as long as the process. It is not meant for production use.
type MemoryRepository struct {
	mu       sync.Mutex
	vertices map[string]*Vertex
	edges    map[string]*Edge
	seq      int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		vertices: map[string]*Vertex{},
		edges:    map[string]*Edge{},
	}
}

func (m *MemoryRepository) nextID() string {
	return fmt.Sprintf("v%d", atomic.AddInt64(&m.seq, 1))
}

func cloneProps(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (m *MemoryRepository) AddVertexAsync(_ context.Context, label string, props map[string]any) (*Vertex, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := &Vertex{ID: m.nextID(), Label: label, Properties: cloneProps(props)}
	m.vertices[v.ID] = v
	return v, nil
}

func (m *MemoryRepository) AddEdgeAsync(_ context.Context, label, outID, inID string, props map[string]any) (*Edge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.vertices[outID]; !ok {
		return nil, fmt.Errorf("graph: add edge: out vertex %s not found", outID)
	}
	if _, ok := m.vertices[inID]; !ok {
		return nil, fmt.Errorf("graph: add edge: in vertex %s not found", inID)
	}
	e := &Edge{ID: m.nextID(), Label: label, OutID: outID, InID: inID, Properties: cloneProps(props)}
	m.edges[e.ID] = e
	return e, nil
}

func (m *MemoryRepository) GetVertexByIdAsync(_ context.Context, id string) (*Vertex, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vertices[id]
	if !ok {
		return nil, nil
	}
	return v, nil
}

func (m *MemoryRepository) UpdateVertexPropertiesAsync(_ context.Context, id string, props map[string]any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vertices[id]
	if !ok {
		return false, nil
	}
	for k, val := range props {
		v.Properties[k] = val
	}
	return true, nil
}

func (m *MemoryRepository) UpsertVertexAndReturnIdAsync(_ context.Context, label, key, value string, props map[string]any) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.vertices {
		if v.Label == label {
			if existing, ok := v.Properties[key]; ok {
				if fmt.Sprint(existing) == value {
					for k, val := range props {
						v.Properties[k] = val
					}
					return v.ID, nil
				}
			}
		}
	}
	v := &Vertex{ID: m.nextID(), Label: label, Properties: cloneProps(props)}
	v.Properties[key] = value
	m.vertices[v.ID] = v
	return v.ID, nil
}

func (m *MemoryRepository) GetVertexIdByLabelAndPropertyAsync(ctx context.Context, label, key, value string) (string, error) {
	v, err := m.GetVertexByLabelAndPropertyAsync(ctx, label, key, value)
	if err != nil || v == nil {
		return "", err
	}
	return v.ID, nil
}

func (m *MemoryRepository) GetVertexByLabelAndPropertyAsync(_ context.Context, label, key, value string) (*Vertex, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.vertices {
		if v.Label != label {
			continue
		}
		if existing, ok := v.Properties[key]; ok && fmt.Sprint(existing) == value {
			return v, nil
		}
	}
	return nil, nil
}

func (m *MemoryRepository) CountVerticesByLabelAsync(_ context.Context, label string, filter map[string]any) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, v := range m.vertices {
		if v.Label != label {
			continue
		}
		if matchesFilter(v, filter) {
			count++
		}
	}
	return count, nil
}

func (m *MemoryRepository) GetVerticesByLabelAsync(_ context.Context, label string, filter map[string]any, count, offset int) ([]*Vertex, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []*Vertex
	for _, v := range m.vertices {
		if v.Label != label {
			continue
		}
		if matchesFilter(v, filter) {
			matched = append(matched, v)
		}
	}
	if offset >= len(matched) {
		return []*Vertex{}, nil
	}
	end := offset + count
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func matchesFilter(v *Vertex, filter map[string]any) bool {
	for k, want := range filter {
		got, ok := v.Properties[k]
		if !ok || fmt.Sprint(got) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}

// EdgeCount is a test/inspection helper not on the Repository interface.
func (m *MemoryRepository) EdgeCount(label string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.edges {
		if label == "" || e.Label == label {
			n++
		}
	}
	return n
}
