package repository

import (
	chatRepo "aliadolaboral/database/repository/chat"
	contactRepo "aliadolaboral/database/repository/contact"
	feedRepo "aliadolaboral/database/repository/feed"
	forumRepo "aliadolaboral/database/repository/forum"
	lawyerRepo "aliadolaboral/database/repository/lawyer"
	legalcaseRepo "aliadolaboral/database/repository/legalcase"
	profileRepo "aliadolaboral/database/repository/profile"
	recordsRepo "aliadolaboral/database/repository/records"
	userRepo "aliadolaboral/database/repository/user"
	vaultRepo "aliadolaboral/database/repository/vault"
)

// Re-export the UserRepository interface and constructor.
type UserRepository = userRepo.UserRepository

var NewMongoUserRepository = userRepo.NewMongoUserRepo

// Re-export the LawyerRepository interface and constructor.
type LawyerRepository = lawyerRepo.LawyerRepository

var NewMongoLawyerRepo = lawyerRepo.NewMongoLawyerRepo

type ProfileRepository = profileRepo.ProfileRepository

var NewMongoProfileRepo = profileRepo.NewMongoProfileRepo

type ContactRepository = contactRepo.ContactRepository

var NewMongoContactRepo = contactRepo.NewMongoContactRepo

type ChatRepository = chatRepo.ChatRepository

var NewMongoChatRepo = chatRepo.NewMongoChatRepo

type ForumRepository = forumRepo.ForumRepository

var NewMongoForumRepo = forumRepo.NewMongoForumRepo

type RecordRepository = recordsRepo.RecordRepository

var NewMongoRecordRepo = recordsRepo.NewMongoRecordRepo

type FeedRepository = feedRepo.FeedRepository

var NewMongoFeedRepo = feedRepo.NewMongoFeedRepo

type LegalCaseRepository = legalcaseRepo.LegalCaseRepository

var NewMongoLegalCaseRepo = legalcaseRepo.NewMongoLegalCaseRepo

type VaultRepository = vaultRepo.VaultRepository

var NewMongoVaultRepo = vaultRepo.NewMongoVaultRepo
