package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gofrs/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"blogcomments/pkg/models"
	"blogcomments/pkg/service"
	"blogcomments/pkg/storage"
)

const maxBodyBytes = 64 << 10

// CommentService is the comment logic behind the /posts/{id}/comments endpoints.
type CommentService interface {
	CommentsForPost(ctx context.Context, postID uuid.UUID) ([]models.CommentDTO, error)
	AddComment(ctx context.Context, postID uuid.UUID, dto models.NewCommentDTO) (uuid.UUID, error)
}

type API struct {
	ServiceName string

	r        *mux.Router
	comments CommentService
	posts    storage.PostStore
	kw       LogWriter
}

// New builds the API. kw may be nil, in which case request logs are not shipped.
func New(name string, comments CommentService, posts storage.PostStore, kw LogWriter) *API {
	api := API{
		ServiceName: name,
		r:           mux.NewRouter(),
		comments:    comments,
		posts:       posts,
		kw:          kw,
	}
	api.endpoints()

	return &api
}

func (api *API) Router() *mux.Router {
	return api.r
}

func (api *API) endpoints() {
	api.r.Use(api.requestIDMiddleware)
	api.r.Use(api.headerMiddleware)

	if api.kw != nil {
		api.r.Use(api.loggingMiddleware(api.kw))
	}

	api.r.HandleFunc("/posts/{id}", api.postHandler).Methods(http.MethodGet)
	api.r.HandleFunc("/posts/{id}/comments", api.commentsHandler).Methods(http.MethodGet)
	api.r.HandleFunc("/posts/{id}/comments", api.addCommentHandler).Methods(http.MethodPost)
}

// commentsHandler lists the comments of a post. A missing post, a post without comments
// and a malformed post ID all produce an empty JSON array.
func (api *API) commentsHandler(w http.ResponseWriter, r *http.Request) {
	sID := shorten(GetRequestID(r.Context()))

	comments := []models.CommentDTO{}

	postID, err := uuid.FromString(mux.Vars(r)["id"])
	if err != nil {
		log.Debugf("[commentsHandler][%s] failed to parse post ID: %v", sID, err)
	} else {
		comments, err = api.comments.CommentsForPost(r.Context(), postID)
		switch {
		case errors.Is(err, service.ErrInvalidArgument):
			log.Debugf("[commentsHandler][%s] post ID:%v: %v", sID, postID, err)
			comments = []models.CommentDTO{}
		case err != nil:
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			log.Errorf("[commentsHandler][%s] post ID:%v: %v", sID, postID, err)
			return
		}
	}

	if err := json.NewEncoder(w).Encode(comments); err != nil {
		log.Errorf("[commentsHandler][%s] failed to encode response data: %v", sID, err)
		return
	}
	log.Debugf("[commentsHandler][%s] response sent to: %v", sID, r.RemoteAddr)
}

// addCommentHandler creates a comment and answers 201 with no body, or 404 when the post
// does not exist.
func (api *API) addCommentHandler(w http.ResponseWriter, r *http.Request) {
	sID := shorten(GetRequestID(r.Context()))

	postID, err := uuid.FromString(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Post not found", http.StatusNotFound)
		log.Debugf("[addCommentHandler][%s] failed to parse post ID: %v", sID, err)
		return
	}

	var dto models.NewCommentDTO
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Bad Request: invalid JSON", http.StatusBadRequest)
		log.Debugf("[addCommentHandler][%s] failed to decode request body: %v", sID, err)
		return
	}

	id, err := api.comments.AddComment(r.Context(), postID, dto)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidArgument):
			http.Error(w, "Post not found", http.StatusNotFound)
			log.Debugf("[addCommentHandler][%s] post ID:%v: %v", sID, postID, err)
		case errors.Is(err, service.ErrInvalidComment):
			http.Error(w, "Bad Request: "+err.Error(), http.StatusBadRequest)
			log.Debugf("[addCommentHandler][%s] post ID:%v: %v", sID, postID, err)
		default:
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			log.Errorf("[addCommentHandler][%s] post ID:%v: %v", sID, postID, err)
		}
		return
	}

	w.WriteHeader(http.StatusCreated)
	log.Infof("[addCommentHandler][%s] comment %v created for post %v", sID, id, postID)
}

// postHandler returns the post itself, straight from the post collaborator.
func (api *API) postHandler(w http.ResponseWriter, r *http.Request) {
	sID := shorten(GetRequestID(r.Context()))

	id, err := uuid.FromString(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid UUID parameter", http.StatusBadRequest)
		log.Debugf("[postHandler][%s] failed to parse post ID: %v", sID, err)
		return
	}

	post, err := api.posts.Post(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrPostNotFound) {
			http.Error(w, "Post not found", http.StatusNotFound)
			log.Debugf("[postHandler][%s] failed to retrieve post: %v", sID, err)
			return
		}
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		log.Errorf("[postHandler][%s] post ID:%v: %v", sID, id, err)
		return
	}

	if err := json.NewEncoder(w).Encode(post); err != nil {
		log.Errorf("[postHandler][%s] failed to encode post data: %v", sID, err)
		return
	}
	log.Debugf("[postHandler][%s] response sent to: %v", sID, r.RemoteAddr)
}
