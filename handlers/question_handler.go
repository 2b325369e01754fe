package handlers

import (
	"net/http"

	"codequiz/services"

	"github.com/gin-gonic/gin"
)

type QuestionHandler struct {
	questionService *services.QuestionService
}

func NewQuestionHandler(questionService *services.QuestionService) *QuestionHandler {
	return &QuestionHandler{
		questionService: questionService,
	}
}

func (h *QuestionHandler) GetRandomQuestion(c *gin.Context) {
	category := c.Query("category")
	difficulty := c.Query("difficulty")

	question, err := h.questionService.Random(category, difficulty)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, question)
}
