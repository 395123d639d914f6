package usecases

type VersionUsecase struct {
	AppName    string
	ApiVersion string
}
