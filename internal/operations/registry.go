package operations

import (
	"fmt"
	"sync"
)

// Registry manages registered pipeline steps
type Registry struct {
	mu    sync.RWMutex
	steps map[string]Step
	order []string
}

// NewRegistry creates an empty step registry
func NewRegistry() *Registry {
	return &Registry{
		steps: make(map[string]Step),
	}
}

// Register adds a step to the registry
func (r *Registry) Register(step Step) error {
	if step == nil {
		return fmt.Errorf("cannot register nil step")
	}

	id := step.ID()
	if id == "" {
		return fmt.Errorf("step ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.steps[id]; exists {
		return fmt.Errorf("step with ID %s already registered", id)
	}

	r.steps[id] = step
	r.order = append(r.order, id)
	return nil
}

// Get retrieves a step by ID
func (r *Registry) Get(id string) (Step, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	step, exists := r.steps[id]
	if !exists {
		return nil, fmt.Errorf("step with ID %s not found", id)
	}
	return step, nil
}

// Has checks if a step is registered
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.steps[id]
	return exists
}

// ListIDs returns all registered step IDs in registration order
func (r *Registry) ListIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}

// Count returns the number of registered steps
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.steps)
}

// GetDependencyOrder returns steps ordered by dependencies. Steps that become
// available together keep their registration order.
func (r *Registry) GetDependencyOrder() ([]Step, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	graph := make(map[string][]string, len(r.steps))
	inDegree := make(map[string]int, len(r.steps))
	position := make(map[string]int, len(r.order))
	for i, id := range r.order {
		position[id] = i
	}

	for id, step := range r.steps {
		for _, dep := range step.GetDependencies() {
			if _, exists := r.steps[dep]; !exists {
				return nil, fmt.Errorf("step %s depends on non-existent step %s", id, dep)
			}
			graph[dep] = append(graph[dep], id)
			inDegree[id]++
		}
	}

	// Kahn's algorithm, the queue kept in registration order
	var queue []string
	for _, id := range r.order {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	ordered := make([]Step, 0, len(r.steps))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		ordered = append(ordered, r.steps[current])

		for _, dependent := range graph[current] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = insertByPosition(queue, dependent, position)
			}
		}
	}

	if len(ordered) != len(r.steps) {
		return nil, fmt.Errorf("dependency cycle detected")
	}
	return ordered, nil
}

func insertByPosition(queue []string, id string, position map[string]int) []string {
	i := len(queue)
	for i > 0 && position[queue[i-1]] > position[id] {
		i--
	}
	queue = append(queue, "")
	copy(queue[i+1:], queue[i:])
	queue[i] = id
	return queue
}

// ValidateDependencies checks that every dependency exists and the graph is acyclic
func (r *Registry) ValidateDependencies() error {
	_, err := r.GetDependencyOrder()
	return err
}
