package handlers

import (
	"aliadolaboral/database/repository"
	"aliadolaboral/middleware"
	"aliadolaboral/services/subscription"
)

// HandlerBundle groups every endpoint handler plus what the route guards need.
type HandlerBundle struct {
	Users         repository.UserRepository
	Auth          *middleware.Authenticator
	Subscriptions subscription.SubscriptionService

	AuthHandler         *AuthHandler
	ContactHandler      *ContactHandler
	ChatHandler         *ChatHandler
	ForumHandler        *ForumHandler
	ProfileHandler      *ProfileHandler
	PymeHandler         *PymeHandler
	NewsHandler         *NewsHandler
	AnalyticsHandler    *AnalyticsHandler
	VaultHandler        *VaultHandler
	LegalHandler        *LegalHandler
	SubscriptionHandler *SubscriptionHandler
	WebhookHandler      *WebhookHandler
	AdminHandler        *AdminHandler
	AIHandler           *AIHandler
}
