package models

import "time"

// ForumPost is a public question.
type ForumPost struct {
	ID          string    `bson:"id" json:"id"`
	AuthorID    string    `bson:"authorId" json:"authorId"`
	AuthorName  string    `bson:"authorName" json:"authorName"`
	Title       string    `bson:"title" json:"title"`
	Content     string    `bson:"content" json:"content"`
	Topic       string    `bson:"topic" json:"topic"`
	IsHidden    bool      `bson:"isHidden" json:"isHidden"`
	Views       int       `bson:"views" json:"views"`
	AnswerCount int       `bson:"answerCount" json:"answerCount"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

// ForumAnswer is a reply to a post, optionally nested under another answer.
type ForumAnswer struct {
	ID         string    `bson:"id" json:"id"`
	PostID     string    `bson:"postId" json:"postId"`
	ParentID   string    `bson:"parentId,omitempty" json:"parentId,omitempty"`
	AuthorID   string    `bson:"authorId" json:"authorId"`
	AuthorName string    `bson:"authorName" json:"authorName"`
	LawyerID   string    `bson:"lawyerId,omitempty" json:"lawyerId,omitempty"`
	Content    string    `bson:"content" json:"content"`
	IsAccepted bool      `bson:"isAccepted" json:"isAccepted"`
	Score      int       `bson:"score" json:"score"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
}

// ForumVote is one user's vote on an answer.
type ForumVote struct {
	ID        string    `bson:"id" json:"id"`
	AnswerID  string    `bson:"answerId" json:"answerId"`
	UserID    string    `bson:"userId" json:"userId"`
	Value     int       `bson:"value" json:"value"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// ForumPostDetail is a post with its answers.
type ForumPostDetail struct {
	ForumPost
	Answers []ForumAnswer `json:"answers"`
}

// CreatePostRequest is the body for new posts.
type CreatePostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Topic   string `json:"topic"`
}

// CreateAnswerRequest is the body for new answers.
type CreateAnswerRequest struct {
	Content  string `json:"content"`
	ParentID string `json:"parentId"`
}

// VoteRequest is the body of the vote endpoint.
type VoteRequest struct {
	Value int `json:"value"`
}

// VoteResult is the outcome of a vote.
type VoteResult struct {
	Success  bool   `json:"success"`
	Message  string `json:"message,omitempty"`
	NewScore int    `json:"newScore"`
}
