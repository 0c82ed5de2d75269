package internal

import (
	"admission/internal/controllers"
	"admission/internal/providers"
	"net/http"
)

func InitRoutes(
	content *controllers.ContentController,
	sync *controllers.SyncController,
	check *controllers.CheckController,
	user *controllers.UserController,
	admin *controllers.AdminController,
	telemetry *controllers.TelemetryController,
	backup *controllers.BackupController,
) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/", http.HandlerFunc(content.Index))
	routers.Get("/ping", http.HandlerFunc(content.Ping))

	routers.Get("/reload", http.HandlerFunc(sync.Reload))
	routers.Get("/reload/repls", http.HandlerFunc(sync.ReloadReplies))
	routers.Get("/reload/users", http.HandlerFunc(sync.ReloadUsers))

	routers.Get("/all", http.HandlerFunc(content.All))
	routers.Get("/all/btns", http.HandlerFunc(content.AllButtons))
	routers.Get("/all/repls", http.HandlerFunc(content.AllReplies))
	routers.Get("/btns/{path}", http.HandlerFunc(content.Buttons))
	routers.Get("/repls/{path}", http.HandlerFunc(content.Replies))
	routers.Get("/count/all/btns", http.HandlerFunc(content.CountButtons))
	routers.Get("/count/all/repls", http.HandlerFunc(content.CountReplies))
	routers.Get("/raw", http.HandlerFunc(content.Raw))

	routers.Post("/telemetry", http.HandlerFunc(telemetry.Receive))

	routers.Get("/check/email", http.HandlerFunc(check.Email))
	routers.Get("/check/phone_number", http.HandlerFunc(check.PhoneNumber))
	routers.Get("/check/city", http.HandlerFunc(check.City))

	routers.Get("/users", http.HandlerFunc(user.Users))
	routers.Get("/users/all/{platform}", http.HandlerFunc(user.UsersByPlatform))
	routers.Get("/users/ids/{platform}", http.HandlerFunc(user.UserIDsByPlatform))
	routers.Post("/user/register", http.HandlerFunc(user.Register))
	routers.Put("/user/update", http.HandlerFunc(user.Update))
	routers.Put("/user/update/partial", http.HandlerFunc(user.UpdatePartial))
	routers.Get("/user/exists/{platform}/{id}", http.HandlerFunc(user.Exists))
	routers.Get("/user/{platform}/{id}", http.HandlerFunc(user.Get))
	routers.Delete("/user/{platform}/{id}", http.HandlerFunc(user.Delete))

	routers.Get("/admins/{platform}", http.HandlerFunc(admin.Admins))
	routers.Post("/admin/enroll", http.HandlerFunc(admin.Enroll))
	routers.Delete("/admin/{platform}/{id}", http.HandlerFunc(admin.Delete))

	routers.Post("/backup", http.HandlerFunc(backup.Backup))
	routers.Post("/backup/restore", http.HandlerFunc(backup.Restore))

	return routers
}
