package tooladapters

// Registry maps tool names to adapters with a generic fallback.
type Registry struct {
	adapters map[string]Adapter
	fallback Adapter
}

// NewRegistry returns the registry of built-in tool adapters.
func NewRegistry() *Registry {
	r := &Registry{
		adapters: make(map[string]Adapter),
		fallback: GenericAdapter{},
	}

	r.Register(BashAdapter{}, "Bash")
	r.Register(ReadAdapter{}, "Read")
	r.Register(WriteAdapter{}, "Write")
	r.Register(EditAdapter{}, "Edit")

	r.Register(GrepAdapter{}, "Grep")
	r.Register(GlobAdapter{}, "Glob")

	r.Register(TaskAdapter{}, "TaskCreate", "TaskUpdate", "TaskList", "TaskGet", "TaskOutput")
	r.Register(TodoWriteAdapter{}, "TodoWrite")

	r.Register(SpecialAdapter{},
		"Skill", "WebSearch", "WebFetch", "AskUserQuestion",
		"EnterPlanMode", "ExitPlanMode", "NotebookEdit", "Task", "TaskStop",
	)

	return r
}

// Register binds an adapter to one or more tool names.
func (r *Registry) Register(a Adapter, names ...string) {
	for _, name := range names {
		r.adapters[name] = a
	}
}

// Get returns the adapter for a tool name, or the generic fallback.
func (r *Registry) Get(name string) Adapter {
	if a, ok := r.adapters[name]; ok {
		return a
	}
	return r.fallback
}
