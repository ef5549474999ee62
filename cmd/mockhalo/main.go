// mockhalo is a standalone stand-in for the HaloPSA API, for local
// development and demos. It serves the token endpoint, customer search and
// ticket creation with seeded data.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type customer struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Company  string `json:"company"`
	Phone    string `json:"phone"`
	Status   string `json:"status"`
	Priority string `json:"priority"`
}

var mockCustomers = []customer{
	{
		ID: "42", Name: "Jane Smith", Email: "jane.smith@example.com",
		Company: "Bendigo Telco", Phone: "+61412345678",
		Status: "Active", Priority: "High",
	},
	{
		ID: "77", Name: "John Doe", Email: "john.doe@example.com",
		Company: "Bendigo Telco", Phone: "+61098765432",
		Status: "Active", Priority: "Normal",
	},
	{
		ID: "103", Name: "Mei Chen", Email: "mei.chen@example.com",
		Company: "Harbour Logistics", Phone: "+14155552671",
		Status: "Inactive", Priority: "Low",
	},
}

func main() {
	port := flag.Int("port", 5000, "listen port")
	flag.Parse()

	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()

	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now()})
	})

	r.POST("/auth/token", func(c *gin.Context) {
		if c.PostForm("grant_type") != "client_credentials" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported_grant_type"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"access_token": "mock-" + uuid.NewString(),
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})

	r.GET("/api/Customers", func(c *gin.Context) {
		search := c.Query("search")
		log.Printf("customer search: %s", search)

		matches := []customer{}
		for _, cust := range mockCustomers {
			if cust.Phone == search {
				matches = append(matches, cust)
				break
			}
		}
		c.JSON(http.StatusOK, gin.H{"customers": matches})
	})

	var nextTicketID = 9000
	r.POST("/api/Tickets", func(c *gin.Context) {
		var body map[string]interface{}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ticket body"})
			return
		}
		nextTicketID++
		c.JSON(http.StatusCreated, gin.H{
			"id":      nextTicketID,
			"summary": body["summary"],
		})
	})

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("mock HaloPSA API listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatal(err)
	}
}
