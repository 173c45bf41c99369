package models

// Domain models matching the database schema in db/migrations/0001_init.sql.
// Timestamps are Unix milliseconds.

type User struct {
	ID           string `json:"id" db:"id"`
	Email        string `json:"email" db:"email"`
	PasswordHash string `json:"-" db:"password_hash"`
	Name         string `json:"name" db:"name"`
	JobTitle     string `json:"jobTitle" db:"job_title"`
	ShortBio     string `json:"shortBio" db:"short_bio"`
	CreatedAt    int64  `json:"createdAt" db:"created_at"`
	UpdatedAt    int64  `json:"updatedAt" db:"updated_at"`
}

// UserSummary is the public slice of a user embedded in other resources.
type UserSummary struct {
	ID       string `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	Email    string `json:"email" db:"email"`
	JobTitle string `json:"jobTitle" db:"job_title"`
}

func (u *User) Summary() *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, JobTitle: u.JobTitle}
}

type Experience struct {
	Company     string  `json:"company"`
	Position    string  `json:"position"`
	StartDate   string  `json:"startDate"`
	EndDate     *string `json:"endDate,omitempty"`
	Current     bool    `json:"current"`
	Description string  `json:"description"`
}

type Education struct {
	Institution string  `json:"institution"`
	Degree      string  `json:"degree"`
	Field       string  `json:"field"`
	StartDate   string  `json:"startDate"`
	EndDate     *string `json:"endDate,omitempty"`
	Current     bool    `json:"current"`
}

type SocialLink struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

type Profile struct {
	ID          string               `json:"id" db:"id"`
	UserID      string               `json:"userId" db:"user_id"`
	AboutMe     string               `json:"aboutMe" db:"about_me"`
	Skills      JSONList[string]     `json:"skills" db:"skills"`
	Location    string               `json:"location" db:"location"`
	Profession  string               `json:"profession" db:"profession"`
	Experience  JSONList[Experience] `json:"experience" db:"experience"`
	Education   JSONList[Education]  `json:"education" db:"education"`
	SocialLinks JSONList[SocialLink] `json:"socialLinks" db:"social_links"`
	CreatedAt   int64                `json:"createdAt" db:"created_at"`
	UpdatedAt   int64                `json:"updatedAt" db:"updated_at"`
}

type ConnectionStatus string

const (
	ConnectionPending  ConnectionStatus = "pending"
	ConnectionAccepted ConnectionStatus = "accepted"
	ConnectionRejected ConnectionStatus = "rejected"
)

type Connection struct {
	ID          string           `json:"id" db:"id"`
	SenderID    string           `json:"senderId" db:"sender_id"`
	ReceiverID  string           `json:"receiverId" db:"receiver_id"`
	PairKey     string           `json:"-" db:"pair_key"`
	Status      ConnectionStatus `json:"status" db:"status"`
	CreatedAt   int64            `json:"createdAt" db:"created_at"`
	UpdatedAt   int64            `json:"updatedAt" db:"updated_at"`
	RespondedAt *int64           `json:"respondedAt" db:"responded_at"`
	Sender      *UserSummary     `json:"sender,omitempty" db:"-"`
	Receiver    *UserSummary     `json:"receiver,omitempty" db:"-"`
}

// ConnectionStats counts a user's relationships.
type ConnectionStats struct {
	TotalConnections int64 `json:"totalConnections"`
	PendingRequests  int64 `json:"pendingRequests"`
	SentRequests     int64 `json:"sentRequests"`
}

type Tag struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

type Role struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

type AdRole struct {
	ID        string `json:"id" db:"id"`
	AdID      string `json:"adId" db:"ad_id"`
	RoleID    string `json:"roleId" db:"role_id"`
	IsOpen    bool   `json:"isOpen" db:"is_open"`
	CreatedAt int64  `json:"createdAt" db:"created_at"`
	UpdatedAt int64  `json:"updatedAt" db:"updated_at"`
	Role      *Role  `json:"role,omitempty" db:"-"`
}

type Ad struct {
	ID          string       `json:"id" db:"id"`
	Title       string       `json:"title" db:"title"`
	Summary     string       `json:"summary" db:"summary"`
	Description string       `json:"description" db:"description"`
	Location    string       `json:"location" db:"location"`
	Metadata    JSONMap      `json:"metadata,omitempty" db:"metadata"`
	UserID      string       `json:"userId" db:"user_id"`
	CreatedAt   int64        `json:"createdAt" db:"created_at"`
	UpdatedAt   int64        `json:"updatedAt" db:"updated_at"`
	Tags        []Tag        `json:"tags" db:"-"`
	AdRoles     []AdRole     `json:"adRoles" db:"-"`
	User        *UserSummary `json:"user,omitempty" db:"-"`
}

type MessageType string

const (
	MessageTypeMessage  MessageType = "message"
	MessageTypeApplying MessageType = "applying"
)

type Message struct {
	ID         string       `json:"id" db:"id"`
	SenderID   string       `json:"senderId" db:"sender_id"`
	ReceiverID string       `json:"receiverId" db:"receiver_id"`
	Type       MessageType  `json:"type" db:"type"`
	JobTitle   string       `json:"jobTitle,omitempty" db:"job_title"`
	Content    string       `json:"content" db:"content"`
	Seen       bool         `json:"seen" db:"seen"`
	CreatedAt  int64        `json:"createdAt" db:"created_at"`
	UpdatedAt  int64        `json:"updatedAt" db:"updated_at"`
	Sender     *UserSummary `json:"sender,omitempty" db:"-"`
	Receiver   *UserSummary `json:"receiver,omitempty" db:"-"`
}

type FeedPost struct {
	ID               string       `json:"id" db:"id"`
	Content          string       `json:"content" db:"content"`
	UserID           string       `json:"userId" db:"user_id"`
	LikesCount       int64        `json:"likesCount" db:"likes_count"`
	CreatedAt        int64        `json:"createdAt" db:"created_at"`
	UpdatedAt        int64        `json:"updatedAt" db:"updated_at"`
	User             *UserSummary `json:"user,omitempty" db:"-"`
	CurrentUserLiked bool         `json:"currentUserLiked" db:"-"`
}

type FeedPostLike struct {
	UserID    string `json:"userId" db:"user_id"`
	PostID    string `json:"postId" db:"post_id"`
	CreatedAt int64  `json:"createdAt" db:"created_at"`
}
