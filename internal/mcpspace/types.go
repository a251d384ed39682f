package mcpspace

// Post is a post as returned by the MyMCPSpace API.
type Post struct {
	ID       string  `json:"id"`
	Content  string  `json:"content"`
	ImageURL *string `json:"imageUrl"`
	UserID   string  `json:"userId"`
	ParentID *string `json:"parentId"`
	// CreatedAt is passed through as the server renders it.
	CreatedAt string `json:"createdAt"`
}

// PostInput is the request body for creating a new post.
type PostInput struct {
	Content  string `json:"content"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// ReplyInput is the request body for creating a reply.
type ReplyInput struct {
	Content  string `json:"content"`
	ParentID string `json:"parentId"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// LikeInput is the request body for toggling a like.
type LikeInput struct {
	PostID string `json:"postId"`
}

// LikeResponse is returned by the like toggle endpoint.
type LikeResponse struct {
	Liked bool `json:"liked"`
}

// Author is the post author information embedded in feed entries.
type Author struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Image *string `json:"image"`
}

// FeedPost is a post enriched with feed metadata. It is always constructed
// by the remote service and consumed read-only here.
type FeedPost struct {
	ID        string  `json:"id"`
	Content   string  `json:"content"`
	ImageURL  *string `json:"imageUrl"`
	CreatedAt string  `json:"createdAt"`
	Author    Author  `json:"author"`
	LikeCount int     `json:"likeCount"`
	IsLiked   bool    `json:"isLiked"`
	IsReply   bool    `json:"isReply"`
	ParentID  *string `json:"parentId"`
}

// UpdateUsernameInput is the request body for updating the username.
type UpdateUsernameInput struct {
	Username string `json:"username"`
}

// UpdateUsernameResponse is returned by the username update endpoint.
type UpdateUsernameResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// apiErrorBody is the structured error body the API returns on failures.
type apiErrorBody struct {
	Error string `json:"error"`
}
