package ports

// Facade input payloads. The validate tags carry the structural bounds the
// facade enforces before touching any state: usernames 3-20 characters,
// group names at most 30, message content 1-1000.

type RegisterInput struct {
	Username string `validate:"required,min=3,max=20"`
	Password string `validate:"required"`
}

type CreateGroupInput struct {
	Actor string `validate:"required"`
	Name  string `validate:"required,max=30"`
}

type RenameGroupInput struct {
	Actor   string `validate:"required"`
	GroupID string `validate:"required"`
	Name    string `validate:"required,max=30"`
}

type PrivateMessageInput struct {
	From    string `validate:"required"`
	To      string `validate:"required"`
	Content string `validate:"required,min=1,max=1000"`
}

type GroupMessageInput struct {
	From    string `validate:"required"`
	GroupID string `validate:"required"`
	Content string `validate:"required,min=1,max=1000"`
}
