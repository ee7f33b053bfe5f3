package structs

type EnviromentModel struct {
	Database database
	Gemini   gemini
	Auth     auth
	RabbitMQ rabbitmq
	Log      log
	Server   server
	Router   router
	Upload   upload
}

type server struct {
	Timezone string
	Mode     string
}

type database struct {
	Client      string
	MaxIdle     uint
	MaxLifeTime string
	MaxOpenConn uint
	User        string
	Password    string
	Host        string
	Db          string
	Params      string
	Port        string
	LogEnable   int
}

type gemini struct {
	APIKey         string
	Model          string
	BaseURL        string
	TimeoutSeconds int
}

type auth struct {
	Username     string
	Password     string
	TokenSecret  string
	CookieSecure bool
	MaxAgeDays   int
}

type rabbitmq struct {
	Enable int
	Domain string
	Queue  string
}

type log struct {
	Level          string
	Dir            string
	ElkEnable      int
	ElkIndex       string
	ElkURL         string
	LogstashEnable int
	LogstashURL    string
	LogstashIndex  string
}

type router struct {
	Port int
}

type upload struct {
	MaxBytes int64
}
