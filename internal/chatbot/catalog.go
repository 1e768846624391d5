// Package chatbot turns natural language into CRUD calls. The completion
// service is shown a fixed catalogue of operations as tool definitions;
// its reply is parsed back into a directive and executed against the
// store, or returned verbatim as a conversational fallback.
package chatbot

type ParamType string

const (
	ParamString  ParamType = "string"
	ParamInteger ParamType = "integer"
	ParamBoolean ParamType = "boolean"
)

type Param struct {
	Name        string
	Type        ParamType
	Required    bool
	Description string
}

type Operation struct {
	Name        string
	Description string
	Params      []Param
}

const (
	OpCreateUser = "create_user"
	OpListUsers  = "list_users"
	OpGetUser    = "get_user"
	OpUpdateUser = "update_user"
	OpDeleteUser = "delete_user"
	OpCreateTask = "create_task"
	OpListTasks  = "list_tasks"
	OpGetTask    = "get_task"
	OpUpdateTask = "update_task"
	OpDeleteTask = "delete_task"
)

// Catalog is the closed set of operations the dispatcher will execute.
// Anything the completion service returns outside this list is rejected.
var Catalog = []Operation{
	{
		Name:        OpCreateUser,
		Description: "Register a new user with username, email, name, phone and password.",
		Params: []Param{
			{Name: "username", Type: ParamString, Required: true, Description: "Unique username for the user."},
			{Name: "email", Type: ParamString, Required: true, Description: "The user's email address."},
			{Name: "first_name", Type: ParamString, Required: true, Description: "The user's first name."},
			{Name: "last_name", Type: ParamString, Required: true, Description: "The user's last name."},
			{Name: "phone", Type: ParamString, Required: true, Description: "The user's phone number."},
			{Name: "password", Type: ParamString, Required: true, Description: "The user's password."},
		},
	},
	{
		Name:        OpListUsers,
		Description: "List users, optionally filtered by username, email or phone substring.",
		Params: []Param{
			{Name: "username", Type: ParamString, Description: "Filter users by username."},
			{Name: "email", Type: ParamString, Description: "Filter users by email."},
			{Name: "phone", Type: ParamString, Description: "Filter users by phone number."},
		},
	},
	{
		Name:        OpGetUser,
		Description: "Fetch a single user by ID.",
		Params: []Param{
			{Name: "id", Type: ParamInteger, Required: true, Description: "ID of the user."},
		},
	},
	{
		Name:        OpUpdateUser,
		Description: "Update an existing user's details. Only provided fields change.",
		Params: []Param{
			{Name: "id", Type: ParamInteger, Required: true, Description: "ID of the user."},
			{Name: "username", Type: ParamString, Description: "New username."},
			{Name: "email", Type: ParamString, Description: "New email address."},
			{Name: "first_name", Type: ParamString, Description: "New first name."},
			{Name: "last_name", Type: ParamString, Description: "New last name."},
			{Name: "phone", Type: ParamString, Description: "New phone number."},
			{Name: "password", Type: ParamString, Description: "New password."},
		},
	},
	{
		Name:        OpDeleteUser,
		Description: "Delete a user by ID. The user's tasks are removed as well.",
		Params: []Param{
			{Name: "id", Type: ParamInteger, Required: true, Description: "ID of the user."},
		},
	},
	{
		Name:        OpCreateTask,
		Description: "Create a task assigned to a user.",
		Params: []Param{
			{Name: "title", Type: ParamString, Required: true, Description: "Short title of the task."},
			{Name: "content", Type: ParamString, Description: "Detailed description of the task."},
			{Name: "user_id", Type: ParamInteger, Required: true, Description: "ID of the user who owns this task."},
			{Name: "completed", Type: ParamBoolean, Description: "Whether the task is completed."},
		},
	},
	{
		Name:        OpListTasks,
		Description: "List tasks, optionally filtered by title, content, completion status, owner ID or owner username.",
		Params: []Param{
			{Name: "title", Type: ParamString, Description: "Filter tasks by title."},
			{Name: "content", Type: ParamString, Description: "Filter tasks by content."},
			{Name: "completed", Type: ParamBoolean, Description: "Filter tasks by completion status."},
			{Name: "user_id", Type: ParamInteger, Description: "Filter tasks by owner ID."},
			{Name: "username", Type: ParamString, Description: "Filter tasks by owner username."},
		},
	},
	{
		Name:        OpGetTask,
		Description: "Fetch a single task by ID.",
		Params: []Param{
			{Name: "id", Type: ParamInteger, Required: true, Description: "ID of the task."},
		},
	},
	{
		Name:        OpUpdateTask,
		Description: "Update an existing task. Only provided fields change.",
		Params: []Param{
			{Name: "id", Type: ParamInteger, Required: true, Description: "ID of the task."},
			{Name: "title", Type: ParamString, Description: "New title."},
			{Name: "content", Type: ParamString, Description: "New content."},
			{Name: "completed", Type: ParamBoolean, Description: "New completion status."},
		},
	},
	{
		Name:        OpDeleteTask,
		Description: "Delete a task by ID.",
		Params: []Param{
			{Name: "id", Type: ParamInteger, Required: true, Description: "ID of the task."},
		},
	},
}

func lookupOperation(name string) (Operation, bool) {
	for _, op := range Catalog {
		if op.Name == name {
			return op, true
		}
	}
	return Operation{}, false
}

// Tools renders the catalogue as the tools array of a chat-completions
// request.
func Tools() []Tool {
	tools := make([]Tool, 0, len(Catalog))

	for _, op := range Catalog {
		properties := make(map[string]ToolProperty, len(op.Params))
		var required []string

		for _, p := range op.Params {
			properties[p.Name] = ToolProperty{
				Type:        string(p.Type),
				Description: p.Description,
			}
			if p.Required {
				required = append(required, p.Name)
			}
		}

		tools = append(tools, Tool{
			Type: "function",
			Function: ToolFunction{
				Name:        op.Name,
				Description: op.Description,
				Parameters: ToolParameters{
					Type:       "object",
					Properties: properties,
					Required:   required,
				},
			},
		})
	}

	return tools
}
