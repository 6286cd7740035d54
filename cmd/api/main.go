package main

import (
	"context"
	"log"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	infraCache "app/internal/infra/cache"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	"app/internal/notify"
	"app/internal/server"
	"app/internal/usecase"
	"app/internal/validator"

	"github.com/joho/godotenv"
)

func main() {
	//.envは無くてもよい（本番は環境変数で渡す）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Restaurant{},
		&model.MenuItem{},
		&model.Order{},
		&model.OrderItem{},
	); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	//メニューキャッシュ（redis）。落ちていても起動は続ける
	redisStore := infraCache.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err := redisStore.Ping(context.Background()); err != nil {
		log.Printf("redis ping: %v (cache degraded)", err)
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	rtRepo := infraRepo.NewRefreshTokenGormRepository(gormDB)
	restaurantRepo := infraRepo.NewRestaurantGormRepository(gormDB)
	menuItemRepo := infraRepo.NewMenuItemGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//通知hub（グローバルにせず依存として渡す）
	hub := notify.NewHub()

	//決済シミュレータ（注文トランザクションの外で確定する）
	payments := usecase.NewPaymentSimulator(orderRepo, hub)

	//Usecase生成
	authUC := usecase.NewAuthUsecase(cfg, userRepo, rtRepo, validator.NewAuthValidator())
	restaurantUC := usecase.NewRestaurantUsecase(restaurantRepo)
	menuUC := usecase.NewMenuUsecase(menuItemRepo, restaurantRepo, redisStore)
	orderUC := usecase.NewOrderUsecase(txManager, orderRepo, restaurantRepo, payments, hub)

	//Handler生成
	handlers := server.Handlers{
		Auth:       handler.NewAuthHandler(authUC),
		Restaurant: handler.NewRestaurantHandler(restaurantUC),
		Menu:       handler.NewMenuHandler(menuUC),
		Order:      handler.NewOrderHandler(orderUC),
		WS:         handler.NewWSHandler(cfg, hub, orderRepo, restaurantRepo),
	}

	//Server起動
	e := server.New(cfg, handlers)
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
