package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/controllers"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/middleware"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/websocket"
)

// Controllers groups the HTTP handlers mounted under /api/v1
type Controllers struct {
	Auth         *controllers.AuthController
	User         *controllers.UserController
	Connection   *controllers.ConnectionController
	Post         *controllers.PostController
	Reaction     *controllers.ReactionController
	Notification *controllers.NotificationController
	Research     *controllers.ResearchController
	Chat         *controllers.ChatController
	Search       *controllers.SearchController
	University   *controllers.UniversityController
}

// SetupRouter configures all application routes. authLimit guards the public
// auth endpoints and may be nil.
func SetupRouter(
	router *gin.Engine,
	c Controllers,
	wsHandler *websocket.Handler,
	authMiddleware *middleware.AuthMiddleware,
	authLimit gin.HandlerFunc,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	if authLimit != nil {
		auth.Use(authLimit)
	}
	{
		auth.POST("/signup", c.Auth.Signup)
		auth.POST("/login", c.Auth.Login)
		auth.POST("/verify-otp", c.Auth.VerifyOTP)
		auth.POST("/resend-otp", c.Auth.ResendOTP)
		auth.POST("/forgot-password", c.Auth.ForgotPassword)
		auth.POST("/reset-password", c.Auth.ResetPassword)
		auth.POST("/refresh-token", c.Auth.RefreshToken)
		auth.POST("/logout", c.Auth.Logout)
		auth.GET("/google/login", c.Auth.GoogleLogin)
		auth.GET("/google/callback", c.Auth.GoogleCallback)
	}

	// The websocket handler checks its own token
	v1.GET("/ws/:userId", wsHandler.HandleConnection)

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	// Unverified users can still read their own profile
	authenticated.GET("/users/me", c.User.GetMe)

	verified := authenticated.Group("")
	verified.Use(authMiddleware.EmailVerificationRequired())

	users := verified.Group("/users")
	{
		users.GET("/:id", c.User.GetUserByID)
		users.PUT("/me/profile", c.User.UpdateProfile)
		users.POST("/me/profile-picture", c.User.UpdateProfilePicture)
	}

	connections := verified.Group("/connections")
	{
		connections.GET("", c.Connection.ListFriends)
		connections.GET("/requests", c.Connection.ListIncoming)
		connections.GET("/available-users", c.Connection.ListAvailableUsers)
		connections.POST("/requests/:id/accept", c.Connection.Accept)
		connections.POST("/requests/:id/reject", c.Connection.Reject)
		connections.POST("/:userId", c.Connection.SendRequest)
	}

	posts := verified.Group("/posts")
	{
		posts.GET("", c.Post.List)
		posts.GET("/events", c.Post.ListEvents)
		posts.POST("/text", c.Post.CreateText)
		posts.POST("/media", c.Post.CreateMedia)
		posts.POST("/document", c.Post.CreateDocument)
		posts.POST("/event", c.Post.CreateEvent)
		posts.GET("/:id", c.Post.Get)
		posts.PUT("/:id/text", c.Post.UpdateText)
		posts.PUT("/:id/media", c.Post.UpdateMedia)
		posts.PUT("/:id/document", c.Post.UpdateDocument)
		posts.PUT("/:id/event", c.Post.UpdateEvent)
		posts.DELETE("/:id", c.Post.Delete)

		posts.POST("/:id/like", c.Reaction.LikePost)
		posts.POST("/:id/comments", c.Reaction.AddComment)
		posts.GET("/:id/comments", c.Reaction.ListComments)
		posts.POST("/:id/share", c.Reaction.Share)

		posts.POST("/:id/rsvp", c.Reaction.RSVP)
		posts.DELETE("/:id/rsvp", c.Reaction.CancelRSVP)
		posts.GET("/:id/rsvp/me", c.Reaction.MyRSVP)
		posts.GET("/:id/rsvp/counts", c.Reaction.RSVPCounts)
		posts.GET("/:id/attendees", c.Reaction.Attendees)
	}

	comments := verified.Group("/comments")
	{
		comments.POST("/:id/like", c.Reaction.LikeComment)
		comments.DELETE("/:id", c.Reaction.DeleteComment)
	}

	notifications := verified.Group("/notifications")
	{
		notifications.GET("", c.Notification.List)
		notifications.GET("/unread-count", c.Notification.UnreadCount)
		notifications.POST("/clear-all", c.Notification.ClearAll)
		notifications.POST("/:id/read", c.Notification.MarkRead)
	}

	research := verified.Group("/research")
	{
		research.POST("/papers", c.Research.UploadPaper)
		research.GET("/papers/search", c.Research.SearchPapers)
		research.GET("/papers/recommended", c.Research.RecommendedPapers)
		research.GET("/papers/user/:userId", c.Research.PapersByUser)
		research.GET("/papers/:id/download", c.Research.DownloadPaper)

		research.POST("/collaborations", c.Research.CreateCollaboration)
		research.GET("/collaborations/mine", c.Research.MyCollaborations)
		research.GET("/collaborations/others", c.Research.OtherCollaborations)
		research.GET("/collaborations/:id", c.Research.GetCollaboration)
		research.POST("/collaborations/:id/requests", c.Research.RequestCollaboration)

		research.GET("/collaboration-requests", c.Research.PendingRequests)
		research.POST("/collaboration-requests/:id/accept", c.Research.AcceptRequest)
		research.POST("/collaboration-requests/:id/reject", c.Research.RejectRequest)
	}

	chat := verified.Group("/chat")
	{
		chat.GET("/conversations", c.Chat.Conversations)
		chat.GET("/history/:friendId", c.Chat.History)
		chat.POST("/upload", c.Chat.Upload)
	}

	verified.GET("/share/:token", c.Reaction.GetShared)
	verified.GET("/search", c.Search.Search)
	verified.GET("/universities/:name", c.University.GetPage)
}
