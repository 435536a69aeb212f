package i18n

// Message keys used by the views and controllers.
const (
	KeyAppTitle            = "app_title"
	KeyDashboard           = "dashboard"
	KeyChooseContest       = "choose_contest"
	KeyPleaseChooseContest = "please_choose_contest"
	KeyNoContest           = "no_contest"
	KeyCompete             = "compete"
	KeyInvalidContest      = "invalid_contest"
	KeyContestClosed       = "contest_closed"
	KeyEnteredContest      = "entered_contest"
	KeyAlreadyEntered      = "already_entered"
	KeyBackToDashboard     = "back_to_dashboard"
)

var builtinMessages = map[string]map[string]string{
	"en": {
		KeyAppTitle:            "Contest",
		KeyDashboard:           "Dashboard",
		KeyChooseContest:       "Choose Contest",
		KeyPleaseChooseContest: "Please choose the contest you want to compete in.",
		KeyNoContest:           "There is no contest available at the moment.",
		KeyCompete:             "Compete",
		KeyInvalidContest:      "Please choose a valid contest.",
		KeyContestClosed:       "This contest is not open for entry.",
		KeyEnteredContest:      "You have entered this contest. Good luck!",
		KeyAlreadyEntered:      "You have already entered this contest.",
		KeyBackToDashboard:     "Back to dashboard",
	},
	"id": {
		KeyAppTitle:            "Kontes",
		KeyDashboard:           "Dasbor",
		KeyChooseContest:       "Pilih Kontes",
		KeyPleaseChooseContest: "Silakan pilih kontes yang ingin Anda ikuti.",
		KeyNoContest:           "Tidak ada kontes yang tersedia saat ini.",
		KeyCompete:             "Bertanding",
		KeyInvalidContest:      "Silakan pilih kontes yang valid.",
		KeyContestClosed:       "Kontes ini tidak dibuka untuk pendaftaran.",
		KeyEnteredContest:      "Anda telah terdaftar di kontes ini. Semoga berhasil!",
		KeyAlreadyEntered:      "Anda sudah terdaftar di kontes ini.",
		KeyBackToDashboard:     "Kembali ke dasbor",
	},
	"fr": {
		KeyAppTitle:            "Concours",
		KeyDashboard:           "Tableau de bord",
		KeyChooseContest:       "Choisir un concours",
		KeyPleaseChooseContest: "Veuillez choisir le concours auquel vous souhaitez participer.",
		KeyNoContest:           "Aucun concours n'est disponible pour le moment.",
		KeyCompete:             "Participer",
		KeyInvalidContest:      "Veuillez choisir un concours valide.",
		KeyContestClosed:       "Ce concours n'est pas ouvert aux inscriptions.",
		KeyEnteredContest:      "Vous participez à ce concours. Bonne chance !",
		KeyAlreadyEntered:      "Vous participez déjà à ce concours.",
		KeyBackToDashboard:     "Retour au tableau de bord",
	},
}
