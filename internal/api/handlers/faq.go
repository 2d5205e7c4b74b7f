package handlers

import (
	"net/http"
	"strings"

	"booking-system/internal/api/interfaces"
	"booking-system/internal/api/models"

	"github.com/gin-gonic/gin"
)

// SupportEmail is the customer support address quoted on the help page
const SupportEmail = "support@barberandblade.com"

var faqEntries = []models.FAQEntry{
	{
		Question: "Hogyan érhetem el az ügyfélszolgálatot, ha kérdésem vagy problémám van?",
		Answer:   "Az ügyfélszolgálatunkat e-mailben érheted el a " + SupportEmail + " címen.",
	},
	{
		Question: "Lehetőségem van lemondani a lefoglalt szolgáltatásomat?",
		Answer: "A szolgáltatás lemondására lehetőség van, kérjük, vedd fel a kapcsolatot a lefoglalt " +
			"szakembernél a szalon email címén vagy telefonszámán.",
	},
	{
		Question: "Milyen szolgáltatásokat találhatok az alkalmazásban, és hogyan tudok foglalni?",
		Answer: "Az alkalmazásban különböző barber és fodrász időpontokat találhatsz. Válaszd ki a kívánt " +
			"szolgáltatást, majd kövesd az egyszerű lépéseket a foglaláshoz.",
	},
	{
		Question: "Hogyan találom meg a legközelebbi szalonokat az alkalmazásban?",
		Answer:   "Az alkalmazásban a legközelebbi szalonokat a térkép segítségével találhatod meg.",
	},
}

// GetFAQ serves the static help page entries, optionally filtered by ?q=
func GetFAQ(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		term := strings.ToLower(strings.TrimSpace(c.Query("q")))

		entries := make([]models.FAQEntry, 0, len(faqEntries))
		for _, entry := range faqEntries {
			if term == "" ||
				strings.Contains(strings.ToLower(entry.Question), term) ||
				strings.Contains(strings.ToLower(entry.Answer), term) {
				entries = append(entries, entry)
			}
		}

		respond(c, http.StatusOK, "", gin.H{
			"faq":           entries,
			"support_email": SupportEmail,
		})
	}
}
