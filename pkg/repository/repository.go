package repository

import (
	"context"
	"errors"

	"github.com/garnizeh/buddyup/internal/models"
)

// Repository interfaces for domain entities. These are the public contracts
// services depend on; concrete implementations live under internal/.
//
// Lookups return (nil, nil) when the row does not exist.

var (
	// ErrDuplicate is returned when a write would violate a uniqueness rule.
	ErrDuplicate = errors.New("duplicate record")
	// ErrNotFound is returned by mutations whose target row does not exist.
	ErrNotFound = errors.New("record not found")
)

type UserRepo interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, u *models.User) error
	ListUserSummaries(ctx context.Context, ids []string) (map[string]*models.UserSummary, error)
}

type ProfileRepo interface {
	CreateProfile(ctx context.Context, p *models.Profile) error
	GetProfileByUserID(ctx context.Context, userID string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, p *models.Profile) error
}

type ConnectionRepo interface {
	CreateConnection(ctx context.Context, c *models.Connection) error
	GetConnectionByID(ctx context.Context, id string) (*models.Connection, error)
	GetConnectionBetween(ctx context.Context, userA, userB string) (*models.Connection, error)
	RespondToConnection(ctx context.Context, id, receiverID string, status models.ConnectionStatus, respondedAt int64) (bool, error)
	ListReceived(ctx context.Context, userID string, status models.ConnectionStatus) ([]models.Connection, error)
	ListSent(ctx context.Context, userID string) ([]models.Connection, error)
	ListAccepted(ctx context.Context, userID string) ([]models.Connection, error)
	DeleteConnection(ctx context.Context, id string) error
	CountAccepted(ctx context.Context, userID string) (int64, error)
	CountPendingReceived(ctx context.Context, userID string) (int64, error)
	CountPendingSent(ctx context.Context, userID string) (int64, error)
}

// NewAdRole describes a role to attach to an ad at creation time.
type NewAdRole struct {
	Name   string
	IsOpen bool
}

// AdFilter is the normalized search input. Zero values disable a predicate.
type AdFilter struct {
	Keywords     string
	Tags         []string
	Roles        []string
	OpenOnly     *bool
	CreatedAfter int64
	Location     string
	UserID       string
	Limit        int
	Offset       int
}

type AdRepo interface {
	CreateAd(ctx context.Context, ad *models.Ad, tags []string, roles []NewAdRole) error
	GetAdByID(ctx context.Context, id string) (*models.Ad, error)
	SearchAds(ctx context.Context, f AdFilter) ([]models.Ad, int64, error)
	SetAdRoleOpen(ctx context.Context, adID, adRoleID string, isOpen bool) error
	DeleteAd(ctx context.Context, id string) error
	CountAdsByUser(ctx context.Context, userID string) (int64, error)
}

// MessageFilter selects messages. Participant matches either side.
type MessageFilter struct {
	SenderID    string
	ReceiverID  string
	Participant string
	Type        models.MessageType
}

type MessageRepo interface {
	CreateMessage(ctx context.Context, m *models.Message) error
	GetMessageByID(ctx context.Context, id string) (*models.Message, error)
	ListMessages(ctx context.Context, f MessageFilter) ([]models.Message, error)
	SetMessageSeen(ctx context.Context, id string, seen bool) error
	DeleteMessage(ctx context.Context, id string) error
}

type FeedRepo interface {
	CreatePost(ctx context.Context, p *models.FeedPost) error
	GetPostByID(ctx context.Context, id string) (*models.FeedPost, error)
	ListPosts(ctx context.Context, userID string, limit, offset int) ([]models.FeedPost, int64, error)
	DeletePost(ctx context.Context, id string) error
	LikePost(ctx context.Context, postID, userID string) (*models.FeedPost, error)
	UnlikePost(ctx context.Context, postID, userID string) (*models.FeedPost, error)
	HasLiked(ctx context.Context, postID, userID string) (bool, error)
	LikedPostIDs(ctx context.Context, userID string, postIDs []string) (map[string]bool, error)
	CountPostsByUser(ctx context.Context, userID string) (int64, error)
}
