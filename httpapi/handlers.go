package httpapi

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"community-service/api"
	"community-service/model"
	"community-service/repository"
	"community-service/service"
)

// GetFeed returns the current feed snapshot.
func (s *Server) GetFeed(c *gin.Context) {
	c.JSON(http.StatusOK, api.NewFeedResponse(s.feed.State(), viewer(c)))
}

// ListMembers returns the member directory, filtered by ?q= when given.
func (s *Server) ListMembers(c *gin.Context) {
	members := s.feed.Members()
	if q := c.Query("q"); strings.TrimSpace(q) != "" {
		c.JSON(http.StatusOK, api.NewMembersResponse(members, s.feed.SearchMembers(q)))
		return
	}
	c.JSON(http.StatusOK, api.NewMembersResponse(members, members.Ordered))
}

func (s *Server) GetUserReaction(c *gin.Context) {
	postID, ok := postIDParam(c)
	if !ok {
		return
	}

	viewerID := viewer(c)
	if viewerID == nil {
		c.JSON(http.StatusOK, api.GetUserReactionResponse{})
		return
	}

	for _, post := range s.feed.State().Posts {
		if post.ID != postID {
			continue
		}
		reaction, found := service.HasUserReacted(post, viewerID, models.ReactionType(c.Query("type")))
		c.JSON(http.StatusOK, api.GetUserReactionResponse{Reacted: found, Type: string(reaction)})
		return
	}

	c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
}

// CreatePost accepts a multipart form with "content" and an optional
// "image" file.
func (s *Server) CreatePost(c *gin.Context) {
	image, closer, err := formImage(c, "image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image upload", "details": err.Error()})
		return
	}
	if closer != nil {
		defer closer.Close()
	}

	post, err := s.gateway.CreatePost(c.Request.Context(), viewer(c), c.PostForm("content"), image)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"post": post})
}

func (s *Server) DeletePost(c *gin.Context) {
	postID, ok := postIDParam(c)
	if !ok {
		return
	}

	deleted, err := s.gateway.DeletePost(c.Request.Context(), viewer(c), postID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.DeletePostResponse{Deleted: deleted})
}

func (s *Server) AddReaction(c *gin.Context) {
	postID, ok := postIDParam(c)
	if !ok {
		return
	}

	var body struct {
		Type string `json:"type"`
	}
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	reaction, err := models.ParseReactionType(body.Type)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	action, err := s.gateway.AddReaction(c.Request.Context(), viewer(c), postID, reaction)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.AddReactionResponse{Action: action.String(), Type: string(reaction)})
}

func (s *Server) AddComment(c *gin.Context) {
	postID, ok := postIDParam(c)
	if !ok {
		return
	}

	var body struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	comment, err := s.gateway.AddComment(c.Request.Context(), viewer(c), postID, body.Content)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}

// UpdateProfile accepts a multipart form. Absent text fields are
// cleared; an absent avatar keeps the stored one.
func (s *Server) UpdateProfile(c *gin.Context) {
	avatar, closer, err := formImage(c, "avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid avatar upload", "details": err.Error()})
		return
	}
	if closer != nil {
		defer closer.Close()
	}

	profile, err := s.gateway.UpdateProfile(c.Request.Context(), viewer(c), service.ProfileInput{
		FullName: optionalForm(c, "full_name"),
		Region:   optionalForm(c, "region"),
		FarmType: optionalForm(c, "farm_type"),
		Avatar:   avatar,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

func postIDParam(c *gin.Context) (uuid.UUID, bool) {
	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post id"})
		return uuid.Nil, false
	}
	return postID, true
}

func optionalForm(c *gin.Context, key string) *string {
	value, ok := c.GetPostForm(key)
	if !ok {
		return nil
	}
	return &value
}

// formImage opens an optional uploaded file. A missing file, or a body
// that is not multipart, is not an error. The declared part type is passed
// on as-is; the gateway sniffs the bytes for both transports.
func formImage(c *gin.Context, field string) (*service.ImageUpload, multipart.File, error) {
	header, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	file, err := header.Open()
	if err != nil {
		return nil, nil, err
	}

	return &service.ImageUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}, file, nil
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	case service.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, repository.ErrReactionConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Reaction changed concurrently, try again"})
		return
	case errors.Is(err, repository.ErrProfileNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}

	var opErr *service.OperationError
	if errors.As(err, &opErr) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": opErr.Message})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
}
