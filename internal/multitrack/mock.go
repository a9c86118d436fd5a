package multitrack

// Post records a single PostInt32Array call made by the configurator.
type Post struct {
	Param  int
	Values []int
	Offset int
}

// MockDriver implements Driver for testing. It hands out sequential
// parameter handles and records every posted array in order.
type MockDriver struct {
	// Params maps registered parameter names to their handles.
	Params map[string]int

	// Posts records every PostInt32Array call in order.
	Posts []Post

	// CreateError is returned by CreateParam if set.
	CreateError error
}

// NewMockDriver creates a MockDriver with no registered parameters.
func NewMockDriver() *MockDriver {
	return &MockDriver{Params: make(map[string]int)}
}

func (d *MockDriver) CreateParam(name string) (int, error) {
	if d.CreateError != nil {
		return 0, d.CreateError
	}
	if handle, ok := d.Params[name]; ok {
		return handle, nil
	}
	handle := len(d.Params) + 1
	d.Params[name] = handle
	return handle, nil
}

func (d *MockDriver) PostInt32Array(param int, values []int, offset int) {
	copied := make([]int, len(values))
	copy(copied, values)
	d.Posts = append(d.Posts, Post{Param: param, Values: copied, Offset: offset})
}

// PostsFor returns the value arrays posted for one parameter handle, in
// order.
func (d *MockDriver) PostsFor(param int) [][]int {
	var posts [][]int
	for _, p := range d.Posts {
		if p.Param == param {
			posts = append(posts, p.Values)
		}
	}
	return posts
}

// Reset clears recorded posts but keeps registered parameters.
func (d *MockDriver) Reset() {
	d.Posts = nil
}
