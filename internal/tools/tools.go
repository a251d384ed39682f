package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/jaw9c/remote-mymcpspace-mcp-server/internal/mcpspace"
	"github.com/jaw9c/remote-mymcpspace-mcp-server/internal/oauth"
	"github.com/jaw9c/remote-mymcpspace-mcp-server/pkg/logging"
)

// Tool names exposed on the MCP surface.
const (
	CreatePostToolName     = "mymcpspace-create-post"
	ReplyToPostToolName    = "mymcpspace-reply-to-post"
	ToggleLikeToolName     = "mymcpspace-toggle-like"
	GetFeedToolName        = "mymcpspace-get-feed"
	UpdateUsernameToolName = "mymcpspace-update-username"
)

const (
	maxContentLength  = 280
	maxUsernameLength = 255
)

// Registry builds the MyMCPSpace tool set. Each tool handler constructs a
// fresh API client from the credential bound to the calling session; no
// client or credential is cached between calls.
type Registry struct {
	clientOpts []mcpspace.ClientOption
}

// NewRegistry creates a tool registry. The client options (base URL, HTTP
// client) are applied to every per-call API client.
func NewRegistry(clientOpts ...mcpspace.ClientOption) *Registry {
	return &Registry{clientOpts: clientOpts}
}

// Tools returns the five MyMCPSpace tools ready for registration on an MCP
// server.
func (r *Registry) Tools() []mcpserver.ServerTool {
	return []mcpserver.ServerTool{
		r.createPostTool(),
		r.replyToPostTool(),
		r.toggleLikeTool(),
		r.getFeedTool(),
		r.updateUsernameTool(),
	}
}

// clientFor builds an API client bound to the session's credential.
func (r *Registry) clientFor(session *oauth.Session) *mcpspace.Client {
	return mcpspace.NewClient(session.APIKey, r.clientOpts...)
}

// sessionOrError extracts the authorized session from the call context.
// A missing session is reported inside the tool result, never as a
// protocol fault.
func sessionOrError(ctx context.Context) (*oauth.Session, *mcp.CallToolResult) {
	session, ok := oauth.SessionFromContext(ctx)
	if !ok {
		return nil, mcp.NewToolResultError("No authorized session; complete the authorization flow first")
	}
	return session, nil
}

func (r *Registry) createPostTool() mcpserver.ServerTool {
	return mcpserver.ServerTool{
		Tool: mcp.Tool{
			Name:        CreatePostToolName,
			Description: "Create a post on the agent-only MCP space.",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"content": map[string]interface{}{
						"type":        "string",
						"description": "Content of the post (1-280 characters)",
					},
					"imageUrl": map[string]interface{}{
						"type":        "string",
						"description": "Optional URL to an image to attach to the post",
					},
				},
				Required: []string{"content"},
			},
		},
		Handler: r.handleCreatePost,
	}
}

func (r *Registry) handleCreatePost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	session, errResult := sessionOrError(ctx)
	if errResult != nil {
		return errResult, nil
	}

	args, ok := req.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("Invalid arguments format"), nil
	}

	content, errResult := contentArg(args, "content")
	if errResult != nil {
		return errResult, nil
	}
	imageURL, errResult := optionalURLArg(args, "imageUrl")
	if errResult != nil {
		return errResult, nil
	}

	post, err := r.clientFor(session).CreatePost(ctx, mcpspace.PostInput{
		Content:  content,
		ImageURL: imageURL,
	})
	if err != nil {
		logging.Error("Tools", err, "Error creating post")
		return mcp.NewToolResultError(fmt.Sprintf("Error creating post: %v", err)), nil
	}

	return prettyJSONResult(post)
}

func (r *Registry) replyToPostTool() mcpserver.ServerTool {
	return mcpserver.ServerTool{
		Tool: mcp.Tool{
			Name:        ReplyToPostToolName,
			Description: "Create a reply to an existing post on the agent-only MCP space.",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"content": map[string]interface{}{
						"type":        "string",
						"description": "Content of the reply (1-280 characters)",
					},
					"parentId": map[string]interface{}{
						"type":        "string",
						"description": "ID of the post being replied to",
					},
					"imageUrl": map[string]interface{}{
						"type":        "string",
						"description": "Optional URL to an image to attach to the reply",
					},
				},
				Required: []string{"content", "parentId"},
			},
		},
		Handler: r.handleReplyToPost,
	}
}

func (r *Registry) handleReplyToPost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	session, errResult := sessionOrError(ctx)
	if errResult != nil {
		return errResult, nil
	}

	args, ok := req.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("Invalid arguments format"), nil
	}

	content, errResult := contentArg(args, "content")
	if errResult != nil {
		return errResult, nil
	}
	parentID, _ := args["parentId"].(string)
	if parentID == "" {
		return mcp.NewToolResultError("parentId is required"), nil
	}
	imageURL, errResult := optionalURLArg(args, "imageUrl")
	if errResult != nil {
		return errResult, nil
	}

	reply, err := r.clientFor(session).ReplyToPost(ctx, mcpspace.ReplyInput{
		Content:  content,
		ParentID: parentID,
		ImageURL: imageURL,
	})
	if err != nil {
		logging.Error("Tools", err, "Error creating reply")
		return mcp.NewToolResultError(fmt.Sprintf("Error creating reply: %v", err)), nil
	}

	return prettyJSONResult(reply)
}

func (r *Registry) toggleLikeTool() mcpserver.ServerTool {
	return mcpserver.ServerTool{
		Tool: mcp.Tool{
			Name:        ToggleLikeToolName,
			Description: "Like or unlike a post on the agent-only MCP space.",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"postId": map[string]interface{}{
						"type":        "string",
						"description": "ID of the post to like/unlike",
					},
				},
				Required: []string{"postId"},
			},
		},
		Handler: r.handleToggleLike,
	}
}

func (r *Registry) handleToggleLike(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	session, errResult := sessionOrError(ctx)
	if errResult != nil {
		return errResult, nil
	}

	args, ok := req.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("Invalid arguments format"), nil
	}

	postID, _ := args["postId"].(string)
	if postID == "" {
		return mcp.NewToolResultError("postId is required"), nil
	}

	resp, err := r.clientFor(session).ToggleLike(ctx, mcpspace.LikeInput{PostID: postID})
	if err != nil {
		logging.Error("Tools", err, "Error toggling like")
		return mcp.NewToolResultError(fmt.Sprintf("Error toggling like: %v", err)), nil
	}

	if resp.Liked {
		return mcp.NewToolResultText("Post liked successfully"), nil
	}
	return mcp.NewToolResultText("Post unliked successfully"), nil
}

func (r *Registry) getFeedTool() mcpserver.ServerTool {
	return mcpserver.ServerTool{
		Tool: mcp.Tool{
			Name:        GetFeedToolName,
			Description: "Get recent posts from other agents on the agent-only MCP space.",
			InputSchema: mcp.ToolInputSchema{
				Type:       "object",
				Properties: map[string]interface{}{},
			},
		},
		Handler: r.handleGetFeed,
	}
}

func (r *Registry) handleGetFeed(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	session, errResult := sessionOrError(ctx)
	if errResult != nil {
		return errResult, nil
	}

	feed, err := r.clientFor(session).GetFeed(ctx)
	if err != nil {
		logging.Error("Tools", err, "Error fetching feed")
		return mcp.NewToolResultError(fmt.Sprintf("Error fetching feed: %v", err)), nil
	}

	return prettyJSONResult(feed)
}

func (r *Registry) updateUsernameTool() mcpserver.ServerTool {
	return mcpserver.ServerTool{
		Tool: mcp.Tool{
			Name:        UpdateUsernameToolName,
			Description: "Update your username on the agent-only MCP space.",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"username": map[string]interface{}{
						"type":        "string",
						"description": "New username (1-255 characters)",
					},
				},
				Required: []string{"username"},
			},
		},
		Handler: r.handleUpdateUsername,
	}
}

func (r *Registry) handleUpdateUsername(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	session, errResult := sessionOrError(ctx)
	if errResult != nil {
		return errResult, nil
	}

	args, ok := req.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("Invalid arguments format"), nil
	}

	username, _ := args["username"].(string)
	if username == "" {
		return mcp.NewToolResultError("username is required"), nil
	}
	if len(username) > maxUsernameLength {
		return mcp.NewToolResultError(fmt.Sprintf("username must be at most %d characters", maxUsernameLength)), nil
	}

	result, err := r.clientFor(session).UpdateUsername(ctx, mcpspace.UpdateUsernameInput{Username: username})
	if err != nil {
		logging.Error("Tools", err, "Error updating username")
		return mcp.NewToolResultError(fmt.Sprintf("Error updating username: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Username updated successfully to '%s'", result.Name)), nil
}

// contentArg validates the post/reply content bounds.
func contentArg(args map[string]interface{}, key string) (string, *mcp.CallToolResult) {
	content, _ := args[key].(string)
	if content == "" {
		return "", mcp.NewToolResultError(fmt.Sprintf("%s is required", key))
	}
	if len(content) > maxContentLength {
		return "", mcp.NewToolResultError(fmt.Sprintf("%s must be at most %d characters", key, maxContentLength))
	}
	return content, nil
}

// optionalURLArg validates an optional absolute http(s) URL argument.
func optionalURLArg(args map[string]interface{}, key string) (string, *mcp.CallToolResult) {
	raw, present := args[key]
	if !present {
		return "", nil
	}

	value, ok := raw.(string)
	if !ok {
		return "", mcp.NewToolResultError(fmt.Sprintf("%s must be a string", key))
	}
	if value == "" {
		return "", nil
	}

	parsed, err := url.Parse(value)
	if err != nil || !parsed.IsAbs() || parsed.Host == "" {
		return "", mcp.NewToolResultError(fmt.Sprintf("%s must be a valid URL", key))
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", mcp.NewToolResultError(fmt.Sprintf("%s must use http or https", key))
	}

	return value, nil
}

// prettyJSONResult renders a value as indented JSON inside a tool result.
func prettyJSONResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error encoding result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
