package service

// Task is a top-level checklist item. The remote API calls it a "list".
type Task struct {
	ID        int64     `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	IsChecked bool      `json:"isChecked" yaml:"isChecked"`
	IsSynced  bool      `json:"isSynced" yaml:"isSynced"`
	SubTasks  []SubTask `json:"subTasks" yaml:"subTasks"`
}

// SubTask is a child item of a Task. The remote API calls it a "task".
type SubTask struct {
	ID        int64  `json:"id" yaml:"id"`
	Title     string `json:"title" yaml:"title"`
	IsChecked bool   `json:"isChecked" yaml:"isChecked"`
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	c := t
	if t.SubTasks != nil {
		c.SubTasks = make([]SubTask, len(t.SubTasks))
		copy(c.SubTasks, t.SubTasks)
	}
	return c
}

// CloneTasks returns a deep copy of a task collection.
func CloneTasks(tasks []Task) []Task {
	if tasks == nil {
		return nil
	}
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}

// RemoteList is a task as the remote API reports it.
type RemoteList struct {
	ID        int64
	Title     string
	IsVisible bool
}

// RemoteSubTask is a sub-task as the remote API reports it.
type RemoteSubTask struct {
	ID      int64
	Content string
	Done    bool
}

// ToTask maps a remote list and its sub-tasks onto the local schema.
// The result is always marked synced.
func (l RemoteList) ToTask(subs []RemoteSubTask) Task {
	t := Task{
		ID:        l.ID,
		Title:     l.Title,
		IsChecked: l.IsVisible,
		IsSynced:  true,
		SubTasks:  make([]SubTask, 0, len(subs)),
	}
	for _, s := range subs {
		t.SubTasks = append(t.SubTasks, SubTask{
			ID:        s.ID,
			Title:     s.Content,
			IsChecked: s.Done,
		})
	}
	return t
}
