package controllers

import (
	"net/http"
	"strconv"

	"github.com/BiblioDesk/BiblioDesk-Backend/src/models"
	"github.com/BiblioDesk/BiblioDesk-Backend/src/services"
	"github.com/gin-gonic/gin"
)

type BookController struct {
	service *services.BookService
}

func NewBookController(service *services.BookService) *BookController {
	return &BookController{service: service}
}

// GetAllBooks handles GET requests to retrieve the catalog with availability
func (c *BookController) GetAllBooks(ctx *gin.Context) {
	books, err := c.service.GetAllBooks()
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, books)
}

// GetUnavailableBooks handles GET requests to retrieve books with no free copies
func (c *BookController) GetUnavailableBooks(ctx *gin.Context) {
	books, err := c.service.GetUnavailableBooks()
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, books)
}

// GetBookByID handles GET requests to retrieve one book with availability
func (c *BookController) GetBookByID(ctx *gin.Context) {
	idParam := ctx.Param("id")
	id, err := strconv.Atoi(idParam)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid book ID"})
		return
	}

	book, available, err := c.service.GetBookByID(id)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	status := "Unavailable"
	if available > 0 {
		status = "Available"
	}
	ctx.JSON(http.StatusOK, gin.H{
		"book":           book,
		"availableCount": available,
		"status":         status,
	})
}

// CreateBook handles POST requests to add a title to the catalog
func (c *BookController) CreateBook(ctx *gin.Context) {
	var book models.BookModel
	if err := ctx.ShouldBindJSON(&book); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := c.service.CreateBook(&book); err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Book created successfully",
		"book":    book,
	})
}

// UpdateBook handles PUT requests to edit the allow-listed catalog fields
func (c *BookController) UpdateBook(ctx *gin.Context) {
	idParam := ctx.Param("id")
	id, err := strconv.Atoi(idParam)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid book ID"})
		return
	}

	var updates map[string]interface{}
	if err := ctx.ShouldBindJSON(&updates); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	book, err := c.service.UpdateBook(id, updates)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"message": "Book updated successfully",
		"book":    book,
	})
}

// DeleteBook handles DELETE requests to remove an unreferenced book
func (c *BookController) DeleteBook(ctx *gin.Context) {
	idParam := ctx.Param("id")
	id, err := strconv.Atoi(idParam)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid book ID"})
		return
	}

	if err := c.service.DeleteBook(id); err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Book deleted successfully"})
}

// ImportBooks handles POST requests with an xlsx upload of catalog rows
func (c *BookController) ImportBooks(ctx *gin.Context) {
	file, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	opened, err := file.Open()
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "could not open uploaded file"})
		return
	}
	defer opened.Close()

	result, err := c.service.ImportBooksFromExcel(opened)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"imported": result.Imported,
		"errors":   result.Errors,
	})
}
