package spse

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"mojejecna/site"
)

const roomsPath = "/ucebna"

// Rooms returns the room directory.
func Rooms(user site.User, session *site.Session) ([]site.Room, error) {
	doc, err := get(user, session, roomsPath)
	if err != nil {
		return nil, err
	}

	var rooms []site.Room
	doc.Find("ul.room-list li a").Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		code := lastSegment(href)
		if code == "" {
			return
		}
		rooms = append(rooms, site.Room{Code: code, Name: clean(link.Text())})
	})
	return rooms, nil
}

// Room returns one parsed room profile.
func Room(user site.User, session *site.Session, code string) (site.Room, error) {
	doc, err := get(user, session, roomsPath+"/"+code)
	if err != nil {
		return site.Room{}, err
	}

	room := site.Room{Code: code}
	room.Name = clean(doc.Find("h1.profile-name").Text())
	if room.Name == "" {
		return site.Room{}, site.ErrNotFound
	}
	doc.Find("table.userprofile tr").Each(func(_ int, row *goquery.Selection) {
		label := strings.TrimSuffix(clean(row.Find("th").Text()), ":")
		value := clean(row.Find("td").Text())
		switch label {
		case "Podlaží":
			room.Floor = value
		case "Správce":
			href, _ := row.Find("td a").Attr("href")
			room.Manager = lastSegment(href)
			if room.Manager == "" {
				room.Manager = value
			}
		}
	})
	return room, nil
}
