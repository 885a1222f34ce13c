package main

import (
	"bufio"
	"bytes"
	"net/http"

	"github.com/cryptoballot/blindvote/booth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/knieriem/markdown"
)

const (
	requestIDHeader      = "X-Request-ID"
	keyFingerprintHeader = "X-Public-Key-SHA256"
)

type server struct {
	booth  *booth.Booth
	readme []byte
}

func newRouter(s *server) *gin.Engine {
	r := gin.Default()
	r.Use(requestID())

	// Displays the readme
	r.GET("/", s.rootHandler)

	// Reports the authority's public key and the ballot
	r.GET("/publickey", s.publicKeyHandler)
	r.GET("/candidates", s.candidatesHandler)

	// The three voting steps
	r.POST("/vote/start", s.startHandler)
	r.POST("/vote/reveal", s.revealHandler)
	r.POST("/vote/finalize", s.finalizeHandler)

	r.GET("/tally", s.tallyHandler)

	return r
}

// requestID gives every request an id that follows it into the booth's log lines.
// A well formed id supplied by the caller is kept.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		c.Request = c.Request.WithContext(booth.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// When a user accesses "/" display the readme
func (s *server) rootHandler(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)

	p := markdown.NewParser(&markdown.Extensions{Smart: true})
	out := bufio.NewWriter(c.Writer)
	p.Markdown(bytes.NewReader(s.readme), markdown.ToHTML(out))
	out.Flush()
}

func (s *server) publicKeyHandler(c *gin.Context) {
	c.Header(keyFingerprintHeader, string(s.booth.PublicKey().GetSHA256()))
	c.String(http.StatusOK, s.booth.PublicKey().String())
}

func (s *server) candidatesHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"election_id": s.booth.ElectionID(),
		"candidatos":  s.booth.Candidates(),
	})
}

func (s *server) startHandler(c *gin.Context) {
	var req booth.StartVoteRequest
	if err := c.ShouldBind(&req); err != nil {
		abortWithError(c, booth.InputError{Err: err})
		return
	}

	resp, err := s.booth.StartVote(c.Request.Context(), req.Candidate)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *server) revealHandler(c *gin.Context) {
	var req booth.RevealVoteRequest
	if err := c.ShouldBind(&req); err != nil {
		abortWithError(c, booth.InputError{Err: err})
		return
	}

	resp, err := s.booth.RevealVote(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *server) finalizeHandler(c *gin.Context) {
	var req booth.FinalizeVoteRequest
	if err := c.ShouldBind(&req); err != nil {
		abortWithError(c, booth.InputError{Err: err})
		return
	}

	resp, err := s.booth.FinalizeVote(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *server) tallyHandler(c *gin.Context) {
	tally, err := s.booth.Tally(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, tally)
}

// abortWithError maps booth errors onto status codes
func abortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case booth.IsInputError(err):
		status = http.StatusBadRequest
	case booth.IsRejected(err):
		status = http.StatusForbidden
	case booth.IsDuplicate(err):
		status = http.StatusConflict
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
